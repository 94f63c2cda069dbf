package main

import (
	"io"
	"strings"
)

const helpText = `# trickle

Render markdown in the terminal **as it streams in**. Output appears line by line, so piping a language model or a slow command into trickle shows formatted text while it is still being written.

## Usage

` + "```sh" + `
trickle [SOURCE]
` + "```" + `

Without a source, markdown is read from standard input. A source can be:

- a file; files that are not markdown render as one highlighted code block
- ` + "`-`" + ` for standard input
- an ` + "`http://`" + ` or ` + "`https://`" + ` URL
- ` + "`github://owner/repo`" + ` or ` + "`gitlab://owner/repo`" + ` for a repository README
- a directory, which renders the first README found in it

## Options

| Flag | Meaning |
|---|---|
| -s, --style | theme name, JSON style path or auto |
| --code-theme | chroma style for code blocks |
| -w, --width | word-wrap at width |
| -p, --pager | display with $PAGER |
| -f, --follow | keep rendering as the file grows |
| -l, --language | language for untagged code blocks |
| --latex | convert LaTeX math to text |

Run ` + "`trickle styles`" + ` to list the available themes and ` + "`trickle config`" + ` to edit the configuration file.

## Example

` + "```sh" + `
llm 'write a haiku about pipes' | trickle
trickle --latex notes.md
` + "```" + `
`

// helpSource returns the built-in help as a markdown source.
func helpSource() *source {
	return &source{reader: io.NopCloser(strings.NewReader(helpText))}
}
