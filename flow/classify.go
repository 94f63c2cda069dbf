package flow

import (
	"regexp"
	"strings"
)

// Kind is the block-level category of an input line.
type Kind int

const (
	Text Kind = iota
	Blank
	Fence
	TableRow
	ListItem
	Heading
	Rule
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Blank:
		return "blank"
	case Fence:
		return "fence"
	case TableRow:
		return "table-row"
	case ListItem:
		return "list-item"
	case Heading:
		return "heading"
	case Rule:
		return "rule"
	}
	return "unknown"
}

// Line is a classified input line.
type Line struct {
	Kind Kind
	Raw  string

	// Indent is the width of the leading whitespace of a list item.
	Indent int
	// Marker is the list marker ("-", "*", "12.") or the fence run ("```").
	Marker string
	// Level is the heading level, 1 to 6.
	Level int
	// Text is the heading text, the list item content or the fence language.
	Text string
}

var (
	tableRowRe  = regexp.MustCompile(`^\s*\|.+\|\s*$`)
	tableSepRe  = regexp.MustCompile(`^[\s|:-]+$`)
	listItemRe  = regexp.MustCompile(`^(\s*)([*-]|\d+\.)\s+(.*)$`)
	headingRe   = regexp.MustCompile(`^\s*(#{1,6})\s+(.*)$`)
	ruleRe      = regexp.MustCompile(`^\s*(?:[-*_]\s*){3,}$`)
	fenceMarker = regexp.MustCompile("^(`{3,}|~{3,})\\s*([^\\s`]*)")
)

// Classify tags a raw input line. Candidates are tried in a fixed order:
// blank, fence, table row, list item, heading, rule, text.
func Classify(raw string) Line {
	l := Line{Kind: Text, Raw: raw}
	stripped := strings.TrimSpace(raw)

	switch {
	case stripped == "":
		l.Kind = Blank
	case isFence(stripped):
		m := fenceMarker.FindStringSubmatch(stripped)
		l.Kind = Fence
		l.Marker = m[1]
		l.Text = m[2]
	case tableRowRe.MatchString(raw):
		l.Kind = TableRow
	case listItemRe.MatchString(raw):
		m := listItemRe.FindStringSubmatch(raw)
		l.Kind = ListItem
		l.Indent = len(m[1])
		l.Marker = m[2]
		l.Text = m[3]
	case headingRe.MatchString(raw):
		m := headingRe.FindStringSubmatch(raw)
		l.Kind = Heading
		l.Level = len(m[1])
		l.Text = strings.TrimSpace(m[2])
	case ruleRe.MatchString(raw):
		l.Kind = Rule
	}
	return l
}

// isFence reports whether a stripped line opens or closes a fenced block. A
// backtick fence may not carry backticks in its info string.
func isFence(stripped string) bool {
	m := fenceMarker.FindStringSubmatch(stripped)
	if m == nil {
		return false
	}
	return m[1][0] != '`' || !strings.Contains(stripped[len(m[1]):], "`")
}

// isTableSeparator reports whether a table row only holds dashes, colons and
// pipes.
func isTableSeparator(raw string) bool {
	return tableSepRe.MatchString(raw)
}

// tableCells splits a table row into trimmed cell values.
func tableCells(raw string) []string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	cells := strings.Split(s, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// leadingSpaces counts the leading space characters of s.
func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}
