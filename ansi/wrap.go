package ansi

import (
	"strings"
)

// Wrap breaks styled text into lines no wider than width visible cells.
//
// Words are split on whitespace and packed greedily. Every line but the first
// starts with indent spaces, which count against width; the prefixes do not.
// The first line is prefixed with firstPrefix, the others with restPrefix.
//
// Each line ends with a full reset. Styles and hyperlinks still open at a
// break are closed before the reset and re-emitted after the next line's
// prefix and indent, so a line can be printed on its own without losing or
// leaking formatting. A word wider than width gets a line of its own.
func Wrap(text string, width, indent int, firstPrefix, restPrefix string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{firstPrefix}
	}
	if indent < 0 {
		indent = 0
	}
	pad := strings.Repeat(" ", indent)

	var (
		lines []string
		cur   strings.Builder
		state StyleState
		used  int
		empty = true
	)
	flush := func() {
		prefix := firstPrefix
		if len(lines) > 0 {
			prefix = restPrefix
		}
		lines = append(lines, prefix+cur.String()+state.Close())
		cur.Reset()
		cur.WriteString(pad)
		cur.WriteString(state.Restore())
		used = indent
		empty = true
	}

	for _, word := range words {
		w := Width(word)
		if !empty && used+1+w > width {
			flush()
		}
		if !empty {
			cur.WriteByte(' ')
			used++
		}
		cur.WriteString(word)
		used += w
		empty = false
		state.Scan(word)
	}
	flush()
	return lines
}
