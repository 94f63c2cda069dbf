package flow

import (
	"strings"

	"github.com/charmbracelet/trickle/ansi"
)

const headingBar = "▌ "

// heading renders a heading. Level one is a centered band across the full
// width; deeper levels are left aligned in fading accent colors.
func (r *Renderer) heading(l Line) {
	th := r.cfg.Theme
	margin := spaces(r.cfg.Margin)

	switch l.Level {
	case 1:
		text := ansi.Strip(r.inline.format(l.Text))
		for _, line := range ansi.Wrap(text, r.cfg.Width, 0, "", "") {
			line = ansi.Strip(line)
			pad := r.cfg.Width - ansi.Width(line)
			left := max(pad/2, 0)
			right := max(pad-left, 0)
			r.emit(margin + th.Band + spaces(left) + line + spaces(right) + ansi.Reset + "\n")
		}

	case 2:
		style := th.Headings[0]
		first := margin + r.accent(headingBar) + style
		rest := margin + spaces(len([]rune(headingBar))) + style
		width := r.cfg.Width - len([]rune(headingBar))
		for _, line := range ansi.Wrap(r.inline.format(l.Text), width, 0, first, rest) {
			r.emit(line + "\n")
		}

	default:
		style := th.Headings[min(l.Level, 6)-2]
		for _, line := range ansi.Wrap(r.inline.format(l.Text), r.cfg.Width, 0, margin+style, margin+style) {
			r.emit(line + "\n")
		}
	}
}

// rule renders a horizontal rule across the full width.
func (r *Renderer) rule() {
	r.emit(spaces(r.cfg.Margin) + r.cfg.Theme.Rule + strings.Repeat("─", r.cfg.Width) + ansi.Reset + "\n")
}

// paragraph renders a line of text, wrapped to the page width.
func (r *Renderer) paragraph(text string) {
	r.plain(r.inline.format(text))
}

// plain wraps already formatted text to the page width.
func (r *Renderer) plain(text string) {
	margin := spaces(r.cfg.Margin)
	for _, line := range ansi.Wrap(text, r.cfg.Width, 0, margin, margin) {
		r.emit(line + "\n")
	}
}
