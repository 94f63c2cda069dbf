// Package ansi measures, inspects and wraps text that carries ANSI escape
// sequences.
//
// Two escape families are understood: CSI sequences ("ESC [ params letter"),
// which carry SGR styling, and OSC sequences ("ESC ] ... ST"), of which OSC 8
// hyperlinks are the ones the renderer produces. Both are zero-width.
package ansi

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	// ESC is the escape character that starts every sequence.
	ESC = "\x1b"
	// CSI is the control sequence introducer.
	CSI = ESC + "["
	// ST is the string terminator used to close OSC sequences.
	ST = ESC + "\\"

	// Reset clears every SGR attribute.
	Reset = CSI + "0m"
	// ResetForeground restores the default foreground color.
	ResetForeground = CSI + "39m"
	// ResetBackground restores the default background color.
	ResetBackground = CSI + "49m"

	BoldOn       = CSI + "1m"
	BoldOff      = CSI + "22m"
	ItalicOn     = CSI + "3m"
	ItalicOff    = CSI + "23m"
	UnderlineOn  = CSI + "4m"
	UnderlineOff = CSI + "24m"

	osc8Start = ESC + "]8;"
	// LinkEnd closes an open OSC 8 hyperlink.
	LinkEnd = ESC + "]8;;" + ST
)

// SGR builds a Select Graphic Rendition sequence from its parameters. It
// returns an empty string when no parameters are given, since "ESC [ m" would
// act as a reset.
func SGR(params ...string) string {
	var ps []string
	for _, p := range params {
		if p != "" {
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return ""
	}
	return CSI + strings.Join(ps, ";") + "m"
}

// Hyperlink wraps text in an OSC 8 hyperlink pointing at url.
func Hyperlink(url, text string) string {
	return osc8Start + ";" + url + ST + text + LinkEnd
}

// seqLen returns the byte length of the escape sequence starting at s[i], or
// 0 if s[i] does not start a complete sequence.
func seqLen(s string, i int) int {
	if i >= len(s) || s[i] != '\x1b' {
		return 0
	}
	_, _, n, state := xansi.DecodeSequence(s[i:], xansi.NormalState, nil)
	if n < 2 || state != xansi.NormalState {
		// a lone or unterminated escape is treated as text
		return 0
	}
	return n
}

// Strip removes all escape sequences from s.
func Strip(s string) string {
	if !strings.Contains(s, ESC) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if n := seqLen(s, i); n > 0 {
			i += n
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// Codes returns, in order, every escape sequence found in s.
func Codes(s string) []string {
	var codes []string
	for i := 0; i < len(s); {
		if n := seqLen(s, i); n > 0 {
			codes = append(codes, s[i:i+n])
			i += n
			continue
		}
		i++
	}
	return codes
}

// LeadingCode returns the escape sequence at the very start of s, if any.
func LeadingCode(s string) (string, bool) {
	n := seqLen(s, 0)
	if n == 0 {
		return "", false
	}
	return s[:n], true
}

// IsReset reports whether seq is an SGR sequence that only turns attributes
// off: a full reset, a foreground/background reset or an attribute-off code.
func IsReset(seq string) bool {
	if !strings.HasPrefix(seq, CSI) || !strings.HasSuffix(seq, "m") {
		return false
	}
	params := seq[len(CSI) : len(seq)-1]
	if params == "" {
		return true
	}
	for _, p := range strings.Split(params, ";") {
		switch p {
		case "0", "00", "22", "23", "24", "25", "27", "28", "29", "39", "49", "55":
		default:
			return false
		}
	}
	return true
}

// isLink reports whether seq is an OSC 8 sequence and whether it opens a link
// (non-empty URI) or closes one.
func isLink(seq string) (link bool, open bool) {
	if !strings.HasPrefix(seq, osc8Start) {
		return false, false
	}
	body := strings.TrimPrefix(seq, osc8Start)
	body = strings.TrimSuffix(strings.TrimSuffix(body, ST), "\a")
	// body is "params;uri"
	_, uri, _ := strings.Cut(body, ";")
	return true, uri != ""
}
