package flow

import (
	"regexp"
	"strings"
)

type frontmatterState int

const (
	frontmatterPending frontmatterState = iota
	frontmatterInside
	frontmatterDone
)

// maxFrontmatterLines bounds how much output a leading "---" can hold back.
const maxFrontmatterLines = 100

var yamlKeyRe = regexp.MustCompile(`^["']?[\w][\w .-]*["']?:(\s|$)`)

// frontmatter recognizes a YAML frontmatter block at the very start of the
// stream: a "---" line, closed by "---" or "...", with YAML-looking lines in
// between.
type frontmatter struct {
	state frontmatterState
	held  []string
}

// consume reports whether line belongs to frontmatter and must not be
// rendered. When it returns false, abandon yields the lines held so far.
func (f *frontmatter) consume(line string) bool {
	switch f.state {
	case frontmatterPending:
		if line != "---" {
			f.state = frontmatterDone
			return false
		}
		f.state = frontmatterInside
		f.held = append(f.held, line)
		return true
	case frontmatterInside:
		if line == "---" || line == "..." {
			f.state = frontmatterDone
			f.held = nil
			return true
		}
		if len(f.held) > maxFrontmatterLines || !yamlLine(line) {
			return false
		}
		f.held = append(f.held, line)
		return true
	}
	return false
}

// abandon ends frontmatter detection and returns the held lines, so they can
// be rendered as ordinary markdown.
func (f *frontmatter) abandon() []string {
	held := f.held
	f.state = frontmatterDone
	f.held = nil
	return held
}

// yamlLine reports whether line can appear inside a YAML frontmatter block:
// a key, a sequence item, an indented continuation or a blank line.
func yamlLine(line string) bool {
	switch {
	case strings.TrimSpace(line) == "":
		return true
	case line[0] == ' ' || line[0] == '\t':
		return true
	case line == "-" || strings.HasPrefix(line, "- "):
		return true
	}
	return yamlKeyRe.MatchString(line)
}
