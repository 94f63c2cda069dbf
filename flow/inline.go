package flow

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/trickle/ansi"
	"github.com/charmbracelet/trickle/theme"
)

// link URLs may hold one level of balanced parentheses
var linkRe = regexp.MustCompile(`^\[([^\]]+)\]\(((?:[^()\s]|\([^()\s]*\))+)\)`)

type span int

const (
	spanNone span = iota
	spanBold
	spanItalic
	spanUnderline
	spanCode
)

type inlineToken struct {
	span    span
	text    string // literal text, or the delimiter as written
	matched bool
}

// inline formats single lines of markdown. Every call starts from a clean
// state, so nothing leaks from one line into the next.
type inline struct {
	theme      theme.Theme
	hyperlinks bool
	// background is restored when a code span ends; empty means the
	// terminal default.
	background string
}

// over returns a copy of in that formats text drawn on background bg.
func (in inline) over(bg string) inline {
	in.background = bg
	return in
}

// format styles the emphasis, code spans and links of one line. Delimiters
// left unclosed at the end of the line are printed literally.
func (in inline) format(s string) string {
	literal := map[int]bool{}
	for {
		toks, unclosed := in.scan(s, literal)
		if unclosed < 0 {
			return in.render(toks)
		}
		// An unclosed code span swallowed the rest of the line; treat its
		// backtick as text and read the line again.
		literal[unclosed] = true
	}
}

// scan tokenizes s. It returns the tokens and the byte offset of a backtick
// that opened a code span never closed, or -1.
func (in inline) scan(s string, literal map[int]bool) ([]inlineToken, int) {
	var (
		toks   []inlineToken
		text   strings.Builder
		open   = map[span]int{} // span -> index of its opening token
		inCode = -1             // byte offset of the open backtick
	)
	flush := func() {
		if text.Len() > 0 {
			toks = append(toks, inlineToken{text: text.String()})
			text.Reset()
		}
	}
	delim := func(sp span, d string) {
		flush()
		if i, ok := open[sp]; ok {
			toks[i].matched = true
			toks = append(toks, inlineToken{span: sp, text: d, matched: true})
			delete(open, sp)
			return
		}
		open[sp] = len(toks)
		toks = append(toks, inlineToken{span: sp, text: d})
	}

	for i := 0; i < len(s); {
		c := s[i]

		if inCode >= 0 {
			if c == '`' && !literal[i] {
				delim(spanCode, "`")
				inCode = -1
			} else {
				text.WriteByte(c)
			}
			i++
			continue
		}

		switch {
		case c == '\\' && i+1 < len(s) && isEscapable(s[i+1]):
			text.WriteByte(s[i+1])
			i += 2
			continue

		case c == '[':
			if m := linkRe.FindStringSubmatch(s[i:]); m != nil {
				flush()
				toks = append(toks, inlineToken{text: in.link(m[1], m[2])})
				i += len(m[0])
				continue
			}

		case c == '`' && !literal[i]:
			delim(spanCode, "`")
			inCode = i
			i++
			continue

		case c == '*' || c == '_':
			sp, d := spanItalic, "*"
			switch {
			case c == '_':
				sp, d = spanUnderline, "_"
			case strings.HasPrefix(s[i:], "**"):
				sp, d = spanBold, "**"
			}
			_, isOpen := open[sp]
			if isOpen || (!wordBefore(s, i) && !spaceAfter(s, i+len(d))) {
				delim(sp, d)
				i += len(d)
				continue
			}
			text.WriteString(d)
			i += len(d)
			continue
		}

		text.WriteByte(c)
		i++
	}
	flush()

	if inCode >= 0 {
		return nil, inCode
	}
	return toks, -1
}

func (in inline) render(toks []inlineToken) string {
	var b strings.Builder
	open := map[span]bool{}
	for _, t := range toks {
		if t.span == spanNone || !t.matched {
			b.WriteString(t.text)
			continue
		}
		on := !open[t.span]
		open[t.span] = on
		b.WriteString(in.sgr(t.span, on, t.text))
	}
	return b.String()
}

func (in inline) sgr(sp span, on bool, d string) string {
	switch sp {
	case spanBold:
		if on {
			return ansi.BoldOn
		}
		return ansi.BoldOff
	case spanItalic:
		if on {
			return ansi.ItalicOn
		}
		return ansi.ItalicOff
	case spanUnderline:
		if on {
			return ansi.UnderlineOn
		}
		return ansi.UnderlineOff
	case spanCode:
		// without a background, keep the backticks so code stays visible
		if in.theme.InlineCode == "" {
			return d
		}
		if on {
			return in.theme.InlineCode
		}
		if in.background != "" {
			return in.background
		}
		return ansi.ResetBackground
	}
	return ""
}

// link renders a markdown link as an OSC 8 hyperlink, or as styled text
// followed by its URL when hyperlinks are disabled.
func (in inline) link(text, url string) string {
	styled := text
	if in.theme.Link != "" {
		styled = in.theme.Link + text + ansi.UnderlineOff + ansi.ResetForeground
	}
	if in.hyperlinks {
		return ansi.Hyperlink(url, styled)
	}
	if text == url {
		return styled
	}
	return styled + " (" + url + ")"
}

// wordBefore reports whether the rune before s[i] is part of a word.
func wordBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// spaceAfter reports whether s[i] is whitespace or the end of the line.
func spaceAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}

func isEscapable(c byte) bool {
	return strings.IndexByte("\\`*_[]()#+-.!|{}~<>", c) >= 0
}
