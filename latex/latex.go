// Package latex turns TeX math embedded in markdown lines into readable
// Unicode text.
//
// Math is recognised between $$..$$ and \[..\] (display) and \(..\) (inline)
// delimiters. A formula may span several lines; Filter then holds lines back
// until the closing delimiter arrives.
package latex

import (
	"strings"
)

// Action tells the caller what to do with the line it passed to Filter.
type Action int

const (
	// Pass means the line contained no math and is returned unchanged.
	Pass Action = iota
	// Hold means the line was buffered inside an open formula; nothing is
	// to be rendered for it yet.
	Hold
	// Replace means the returned text replaces the line.
	Replace
	// Block means a display formula stood alone on its lines and the returned
	// text should be rendered as a paragraph of its own.
	Block
)

func (a Action) String() string {
	switch a {
	case Pass:
		return "pass"
	case Hold:
		return "hold"
	case Replace:
		return "replace"
	case Block:
		return "block"
	}
	return "unknown"
}

type delimiter struct {
	start, end string
	display    bool
}

var delimiters = []delimiter{
	{"$$", "$$", true},
	{`\[`, `\]`, true},
	{`\(`, `\)`, false},
}

// State carries an unfinished formula from one line to the next. The zero
// value is ready to use.
type State struct {
	open    bool
	delim   delimiter
	prefix  string
	pending []string
}

// Pending reports whether a formula is still open.
func (s *State) Pending() bool {
	return s.open
}

// Flush abandons an open formula and returns the raw text that was held back,
// delimiter included, so it can be rendered as-is.
func (s *State) Flush() (string, bool) {
	if !s.open {
		return "", false
	}
	raw := s.prefix + s.delim.start + strings.Join(s.pending, "\n")
	*s = State{}
	return raw, true
}

// Filter converts the math in line, using and updating st.
func Filter(st *State, line string) (string, Action) {
	text := line
	changed := false

	if st.open {
		before, after, found := strings.Cut(line, st.delim.end)
		if !found {
			st.pending = append(st.pending, line)
			return "", Hold
		}
		math := ToText(strings.Join(append(st.pending, before), "\n"))
		prefix, display := st.prefix, st.delim.display
		*st = State{}
		if display && blank(prefix) && blank(after) {
			return math, Block
		}
		text = prefix + math + after
		changed = true
	}

	var out strings.Builder
	for {
		idx, d := earliest(text)
		if idx < 0 {
			out.WriteString(text)
			break
		}
		out.WriteString(text[:idx])
		rest := text[idx+len(d.start):]
		end := strings.Index(rest, d.end)
		if end < 0 {
			st.open = true
			st.delim = d
			st.prefix = out.String()
			st.pending = []string{rest}
			return "", Hold
		}
		math := ToText(rest[:end])
		after := rest[end+len(d.end):]
		if d.display && blank(out.String()) && blank(after) {
			return math, Block
		}
		out.WriteString(math)
		text = after
		changed = true
	}

	if changed {
		return out.String(), Replace
	}
	return line, Pass
}

func earliest(text string) (int, delimiter) {
	best := -1
	var found delimiter
	for _, d := range delimiters {
		i := strings.Index(text, d.start)
		if i >= 0 && (best < 0 || i < best) {
			best, found = i, d
		}
	}
	return best, found
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
