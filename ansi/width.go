package ansi

import (
	"unicode/utf8"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Width returns the number of terminal cells s occupies once escape sequences
// are removed.
func Width(s string) int {
	return xansi.StringWidth(s)
}

// RuneCount returns the number of visible characters in s.
func RuneCount(s string) int {
	return utf8.RuneCountInString(Strip(s))
}

// VisibleIndex returns the byte offset in s immediately after its n-th
// visible character. Escape sequences that follow that character are not
// included. If s has fewer than n visible characters, len(s) and false are
// returned.
func VisibleIndex(s string, n int) (int, bool) {
	if n <= 0 {
		return 0, true
	}
	seen := 0
	for i := 0; i < len(s); {
		if l := seqLen(s, i); l > 0 {
			i += l
			continue
		}
		// a grapheme cluster may hold several characters
		_, _, size, _ := xansi.DecodeSequence(s[i:], xansi.NormalState, nil)
		if size <= 0 {
			size = 1
		}
		cluster := s[i : i+size]
		for j := 0; j < len(cluster); {
			_, rs := utf8.DecodeRuneInString(cluster[j:])
			j += rs
			seen++
			if seen == n {
				return i + j, true
			}
		}
		i += size
	}
	return len(s), false
}

// Cut splits plain (escape-free) text into consecutive pieces no wider than
// width cells. A single character wider than width gets a piece of its own.
// Empty input yields one empty piece.
func Cut(s string, width int) []string {
	if s == "" || width <= 0 {
		return []string{s}
	}
	var (
		pieces []string
		start  int
		w      int
	)
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > width && i > start {
			pieces = append(pieces, s[start:i])
			start, w = i, 0
		}
		w += rw
	}
	return append(pieces, s[start:])
}
