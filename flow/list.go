package flow

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/trickle/ansi"
)

type listKind int

const (
	unordered listKind = iota
	ordered
)

// listFrame is one level of list nesting.
type listFrame struct {
	indent   int
	kind     listKind
	counter  int
	numWidth int // widest number printed so far
}

// listStack holds the open list levels. Frames strictly increase in indent
// from bottom to top.
type listStack []listFrame

// enter positions the stack for an item at indent and returns its frame:
// deeper frames are popped, an equal indent reuses the top frame and a
// greater one pushes a new frame.
func (ls *listStack) enter(indent int, kind listKind) *listFrame {
	s := *ls
	for len(s) > 0 && s[len(s)-1].indent > indent {
		s = s[:len(s)-1]
	}
	if len(s) == 0 || s[len(s)-1].indent < indent {
		s = append(s, listFrame{indent: indent, kind: kind})
	}
	top := &s[len(s)-1]
	if top.kind != kind {
		top.kind = kind
		top.counter, top.numWidth = 0, 0
	}
	*ls = s
	return top
}

// restart makes the next ordered list count from one again, whatever its
// depth.
func (ls listStack) restart() {
	for i := range ls {
		ls[i].counter, ls[i].numWidth = 0, 0
	}
}

func markerKind(marker string) listKind {
	if strings.HasSuffix(marker, ".") {
		return ordered
	}
	return unordered
}

// listItem renders one list item with a bullet or number and a hanging
// indent for its wrapped lines.
func (r *Renderer) listItem(l Line) {
	kind := markerKind(l.Marker)
	frame := r.lists.enter(l.Indent, kind)
	if kind == ordered {
		frame.counter++
	}
	r.listOpen = true

	num := strconv.Itoa(frame.counter)
	if kind == ordered {
		frame.numWidth = max(frame.numWidth, len(num))
	}
	col := r.markerColumn()
	margin := spaces(r.cfg.Margin)

	var first string
	if kind == ordered {
		first = margin + spaces(col-len(num)) + r.accent(num) + " "
	} else {
		first = margin + spaces(col-1) + r.accent("•") + " "
	}
	rest := margin + spaces(col-1)

	width := max(r.cfg.Width-col-4, 1)
	for _, line := range ansi.Wrap(r.inline.format(l.Text), width, 2, first, rest) {
		r.emit(line + "\n")
	}
}

// listContinuation renders an indented paragraph line that belongs to the
// current list item, aligned with the item's text.
func (r *Renderer) listContinuation(l Line) {
	col := r.markerColumn()
	prefix := spaces(r.cfg.Margin + col + 1)
	width := max(r.cfg.Width-col-4, 1)
	for _, line := range ansi.Wrap(r.inline.format(l.Raw), width, 0, prefix, prefix) {
		r.emit(line + "\n")
	}
}

// markerColumn is the column, after the margin, where the current item's
// marker ends. Numbers wider than the nesting indent push it right.
func (r *Renderer) markerColumn() int {
	col := 2 * len(r.lists)
	if len(r.lists) > 0 {
		col = max(col, r.lists[len(r.lists)-1].numWidth)
	}
	return col
}

func (r *Renderer) accent(s string) string {
	if r.cfg.Theme.Accent == "" {
		return s
	}
	return r.cfg.Theme.Accent + s + ansi.ResetForeground
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
