package flow

import (
	"strings"

	"github.com/charmbracelet/trickle/ansi"
)

type tablePhase int

const (
	tableIdle tablePhase = iota
	tableHeader
	tableSeparator
	tableBody
)

const (
	cellPadding = 1
	divider     = "│"
)

// table buffers the rows of a pipe table until the table ends.
type table struct {
	phase tablePhase
	rows  [][]string
}

func (t *table) active() bool {
	return t.phase != tableIdle
}

// add records a table row. The separator under the header switches the
// table to its body and is not kept.
func (t *table) add(raw string) {
	switch t.phase {
	case tableIdle:
		t.phase = tableHeader
	case tableHeader:
		if isTableSeparator(raw) {
			t.phase = tableSeparator
			return
		}
		t.phase = tableBody
	case tableSeparator:
		t.phase = tableBody
	}
	t.rows = append(t.rows, tableCells(raw))
}

func (t *table) reset() {
	t.phase = tableIdle
	t.rows = nil
}

// flushTable renders the buffered table, if any, and resets it.
func (r *Renderer) flushTable() {
	if !r.table.active() {
		return
	}
	rows := r.table.rows
	r.table.reset()
	if len(rows) == 0 {
		return
	}

	th := r.cfg.Theme
	background := func(i int) string {
		if i == 0 {
			return th.TableHeader
		}
		return th.TableRows[(i-1)%2]
	}

	cells := make([][]string, len(rows))
	var widths []int
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		in := r.inline.over(background(i))
		for j, c := range row {
			cells[i][j] = in.format(c)
			w := ansi.Width(cells[i][j])
			if j >= len(widths) {
				widths = append(widths, w)
			} else if w > widths[j] {
				widths[j] = w
			}
		}
	}

	margin := spaces(r.cfg.Margin)
	for i, row := range cells {
		bg := background(i)
		var on, off string
		if i == 0 {
			on, off = ansi.BoldOn, ansi.BoldOff
		}

		var b strings.Builder
		b.WriteString(margin)
		for j, w := range widths {
			if j > 0 {
				b.WriteString(bg + divider)
			}
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			pad := spaces(cellPadding)
			b.WriteString(bg + pad + on + cell + off)
			b.WriteString(spaces(w-ansi.Width(cell)) + pad)
		}
		b.WriteString(ansi.Reset + "\n")
		r.emit(b.String())
	}
}
