package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

var markdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

// IsMarkdownFile returns whether the filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	ext := filepath.Ext(filename)

	if ext == "" {
		// By default, assume it's a markdown file.
		return true
	}

	for _, v := range markdownExtensions {
		if strings.EqualFold(ext, v) {
			return true
		}
	}

	// Has an extension but not markdown
	// so assume this is a code file.
	return false
}

// Language returns the code language implied by a file name's extension.
func Language(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// PagerCommand returns the pager to display output with, split into program
// and arguments. $PAGER wins over the default "less -r".
func PagerCommand() []string {
	cmd := strings.Fields(os.Getenv("PAGER"))
	if len(cmd) == 0 {
		return []string{"less", "-r"}
	}
	return cmd
}

// CodeFence is the fence marker CodeBlock wraps files in. Tildes keep
// backtick fences inside the file from ending the block.
const CodeFence = "~~~~~~~~"

// CodeBlock wraps the contents of r in a fenced code block with the given
// language, so a source file renders as one highlighted block. The contents
// are streamed, not buffered.
func CodeBlock(r io.Reader, language string) io.Reader {
	return &fenced{
		open: strings.NewReader(CodeFence + language + "\n"),
		body: r,
	}
}

type fenced struct {
	open  io.Reader
	body  io.Reader
	close io.Reader
	last  byte
}

func (f *fenced) Read(p []byte) (int, error) {
	if f.open != nil {
		n, err := f.open.Read(p)
		if err == io.EOF {
			f.open = nil
			err = nil
		}
		return n, err
	}
	if f.body != nil {
		n, err := f.body.Read(p)
		if n > 0 {
			f.last = p[n-1]
		}
		if err == io.EOF {
			end := CodeFence + "\n"
			if f.last != '\n' && f.last != 0 {
				end = "\n" + end
			}
			f.body = nil
			f.close = strings.NewReader(end)
			err = nil
		}
		return n, err
	}
	return f.close.Read(p)
}
