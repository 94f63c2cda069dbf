package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gstyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"

	"github.com/charmbracelet/trickle/ansi"
	"github.com/charmbracelet/trickle/flow"
	"github.com/charmbracelet/trickle/highlight"
	"github.com/charmbracelet/trickle/theme"
)

// plainOptions sets the options for deterministic, uncolored output and
// restores them when the test ends.
func plainOptions(t *testing.T) {
	t.Helper()
	saved := []any{pager, follow, style, codeTheme, language, width, latexMode, frontmatter, hyperlinks}
	t.Cleanup(func() {
		pager, follow = saved[0].(bool), saved[1].(bool)
		style, codeTheme, language = saved[2].(string), saved[3].(string), saved[4].(string)
		width = saved[5].(uint)
		latexMode, frontmatter, hyperlinks = saved[6].(bool), saved[7].(bool), saved[8].(bool)
	})
	pager, follow = false, false
	style, codeTheme, language = gstyles.NoTTYStyle, "", flow.DefaultLanguage
	width = 40
	latexMode, frontmatter, hyperlinks = false, true, false
}

func TestTrickleFlags(t *testing.T) {
	plainOptions(t)
	t.Cleanup(func() {
		_ = rootCmd.ParseFlags([]string{"-p=false", "-f=false", "--latex=false", "-s", gstyles.AutoStyle, "-w", "0"})
	})

	tt := []struct {
		args  []string
		check func() bool
	}{
		{
			args:  []string{"-p"},
			check: func() bool { return pager },
		},
		{
			args:  []string{"-s", "light"},
			check: func() bool { return style == "light" },
		},
		{
			args:  []string{"-w", "40"},
			check: func() bool { return width == 40 },
		},
		{
			args:  []string{"--latex", "-f"},
			check: func() bool { return latexMode && follow },
		},
		{
			args:  []string{"--code-theme", "nord", "-l", "go"},
			check: func() bool { return codeTheme == "nord" && language == "go" },
		},
	}

	for _, v := range tt {
		err := rootCmd.ParseFlags(v.args)
		if err != nil {
			t.Fatal(err)
		}
		if !v.check() {
			t.Errorf("Parsing flag failed: %s", v.args)
		}
	}
}

func TestLayoutWidth(t *testing.T) {
	tests := []struct {
		cols, want int
	}{
		{0, 71}, // unknown size: 80 columns
		{80, 71},
		{100, 89},
		{20, flow.MinWidth},
		{400, maxWidth},
	}
	for _, tt := range tests {
		if got := layoutWidth(tt.cols); got != tt.want {
			t.Errorf("layoutWidth(%d) = %d, want %d", tt.cols, got, tt.want)
		}
	}
}

func TestSourceFromArg(t *testing.T) {
	plainOptions(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(file, []byte("# Notes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "project", "docs")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "Readme.md"), []byte("hi\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	src, err := sourceFromArg(ctx, file)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	_ = src.reader.Close()
	if src.URL != file {
		t.Errorf("URL = %q, want %q", src.URL, file)
	}

	src, err = sourceFromArg(ctx, filepath.Join(dir, "project"))
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	_ = src.reader.Close()
	if filepath.Base(src.URL) != "Readme.md" {
		t.Errorf("directory resolved to %q", src.URL)
	}

	src, err = sourceFromArg(ctx, "-")
	if err != nil || src.reader != os.Stdin {
		t.Errorf("stdin source = %+v, %v", src, err)
	}

	_, err = sourceFromArg(ctx, filepath.Join(dir, "missing.md"))
	if err == nil || !strings.HasPrefix(err.Error(), "file not found: ") {
		t.Errorf("missing file error = %v", err)
	}

	_, err = sourceFromArg(ctx, "ftp://example.com/README.md")
	if err == nil || !strings.Contains(err.Error(), "not a supported protocol") {
		t.Errorf("ftp error = %v", err)
	}

	empty := filepath.Join(dir, "empty")
	_ = os.Mkdir(empty, 0o755)
	if _, err := sourceFromArg(ctx, empty); err == nil {
		t.Error("directory without a README accepted")
	}
}

func TestExecuteArg(t *testing.T) {
	plainOptions(t)
	dir := t.TempDir()

	md := filepath.Join(dir, "doc.md")
	doc := "---\ntitle: x\n---\n# Hello\n\nSome **text**.\n"
	if err := os.WriteFile(md, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := executeArg(context.Background(), md, &buf); err != nil {
		t.Fatal(err)
	}
	out := ansi.Strip(buf.String())
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "Some text.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "title: x") {
		t.Error("frontmatter rendered")
	}

	code := filepath.Join(dir, "main.go")
	if err := os.WriteFile(code, []byte("package main\n\n// # not a heading\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := executeArg(context.Background(), code, &buf); err != nil {
		t.Fatal(err)
	}
	out = ansi.Strip(buf.String())
	if !strings.Contains(out, "    package main") || !strings.Contains(out, "    // # not a heading") {
		t.Errorf("code file not rendered as a code block:\n%s", out)
	}

	if err := executeArg(context.Background(), filepath.Join(dir, "nope.md"), &buf); err == nil {
		t.Error("missing file accepted")
	}
}

func TestHelpRenders(t *testing.T) {
	cfg := flow.DefaultConfig()
	cfg.Highlighter = highlight.None
	out, err := flow.RenderString(cfg, helpText)
	if err != nil {
		t.Fatal(err)
	}
	vis := ansi.Strip(out)
	for _, want := range []string{"trickle", "Usage", "github://owner/repo", "--follow"} {
		if !strings.Contains(vis, want) {
			t.Errorf("help lacks %q", want)
		}
	}
	if strings.Contains(vis, "| Flag") {
		t.Error("help table rendered with literal pipes")
	}
}

func TestLoadTheme(t *testing.T) {
	th, err := loadTheme("dracula", termenv.TrueColor)
	if err != nil || th.Name != "dracula" {
		t.Errorf("dracula = %q, %v", th.Name, err)
	}

	_, err = loadTheme("draculla", termenv.TrueColor)
	if !errors.Is(err, theme.ErrUnknown) {
		t.Errorf("err = %v, want ErrUnknown", err)
	}

	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte(`{"code_block": {"theme": "nord"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	th, err = loadTheme(path, termenv.TrueColor)
	if err != nil || th.Name != "custom" || th.CodeTheme != "nord" {
		t.Errorf("custom = %+v, %v", th, err)
	}
}

func TestStylesList(t *testing.T) {
	out := ansi.Strip(stylesList())
	for _, want := range []string{theme.DefaultName, "dracula", "monokai"} {
		if !strings.Contains(out, want) {
			t.Errorf("styles list lacks %q", want)
		}
	}
}

func TestEnsureConfigFile(t *testing.T) {
	saved := configFile
	t.Cleanup(func() { configFile = saved })

	configFile = filepath.Join(t.TempDir(), "nested", "trickle.yml")
	if err := ensureConfigFile(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != defaultConfig {
		t.Errorf("config = %q", b)
	}

	configFile = filepath.Join(t.TempDir(), "trickle.json")
	if err := ensureConfigFile(); err == nil {
		t.Error("json config accepted")
	}
}

func TestFollowReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.md")
	if err := os.WriteFile(path, []byte("a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r, err := newFollowReader(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close() //nolint:errcheck

	p := make([]byte, 64)
	n, err := r.Read(p)
	if err != nil || string(p[:n]) != "a\n" {
		t.Fatalf("first read = %q, %v", p[:n], err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
		if err != nil {
			return
		}
		_, _ = f.WriteString("b\n")
		_ = f.Close()
	}()
	n, err = r.Read(p)
	if err != nil || string(p[:n]) != "b\n" {
		t.Fatalf("read after append = %q, %v", p[:n], err)
	}

	cancel()
	if _, err := io.ReadAll(r); err != nil {
		t.Errorf("ReadAll after cancel: %v", err)
	}
}

func TestFollowRender(t *testing.T) {
	plainOptions(t)
	path := filepath.Join(t.TempDir(), "live.md")
	if err := os.WriteFile(path, []byte("```\nx\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	follow = true

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	var buf bytes.Buffer
	if err := executeArg(ctx, path, &buf); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal(err)
	}
	// the open block is closed when following stops
	vis := strings.Split(strings.TrimRight(ansi.Strip(buf.String()), "\n"), "\n")
	if len(vis) != 3 || strings.TrimSpace(vis[1]) != "x" {
		t.Errorf("rows = %q", vis)
	}
}
