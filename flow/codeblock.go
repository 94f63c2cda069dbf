package flow

import (
	"strings"

	"github.com/charmbracelet/trickle/ansi"
)

// attrsOff turns off every attribute a highlighter may set on a token,
// leaving the background alone.
var attrsOff = ansi.SGR("22", "23", "24", "39")

// codeSession is the state of one open fenced code block.
type codeSession struct {
	marker string
	lang   string
	start  int // input line of the opening fence

	measured bool
	indent   string // leading spaces stripped from every body line

	raw     strings.Builder // dedented code seen so far, newline terminated
	emitted int             // visible characters of raw already printed
	warned  bool
}

// openCode starts a fenced block and prints its top padding row.
func (r *Renderer) openCode(l Line) {
	lang := l.Text
	if lang == "" {
		lang = r.cfg.DefaultLanguage
	}
	r.code = &codeSession{
		marker: l.Marker,
		lang:   lang,
		start:  r.lines.Line(),
	}
	r.emit(r.codePad(ansi.ResetBackground))
}

// closeCode ends the open block with a padding row and a full reset.
func (r *Renderer) closeCode() {
	r.code = nil
	r.emit(r.codePad(ansi.Reset))
}

func (r *Renderer) codePad(end string) string {
	return spaces(r.cfg.Margin) + r.cfg.Theme.CodeBackground + spaces(r.cfg.Width) + end + "\n"
}

// codeLine handles one input line while a block is open: either the closing
// fence or a line of code.
func (r *Renderer) codeLine(raw string) {
	s := r.code
	if strings.TrimSpace(raw) == s.marker {
		r.closeCode()
		return
	}

	if !s.measured {
		s.indent = spaces(leadingSpaces(raw))
		s.measured = true
	}
	line := strings.TrimPrefix(raw, s.indent)
	line = strings.ReplaceAll(line, "\t", "    ")

	chunks := ansi.Cut(line, max(r.cfg.Width-4, 1))
	for i, chunk := range chunks {
		last := i == len(chunks)-1
		s.raw.WriteString(chunk)
		if last {
			s.raw.WriteByte('\n')
		}
		content := r.highlightChunk(chunk)
		r.emit(r.codeRow(content, chunk, i > 0))
		s.emitted += ansi.RuneCount(chunk)
		if last {
			s.emitted++
		}
	}
}

// highlightChunk highlights the whole block so far and returns only the
// styled form of chunk, the text just appended to it.
//
// The highlighter sees the entire buffer so that lexical context spanning
// lines is kept. Its output for text already printed may change between
// calls; only the part after the emitted characters is used. Styles open at
// the cut are re-established, and attribute resets left at the cut are
// dropped since they only closed styles of text printed earlier.
func (r *Renderer) highlightChunk(chunk string) string {
	s := r.code
	h, err := r.cfg.Highlighter.Highlight(s.lang, s.raw.String())
	if err != nil {
		r.log.Error("highlighting failed", "lang", s.lang, "line", r.lines.Line(), "err", err)
		return chunk
	}

	n := ansi.RuneCount(chunk)
	if ansi.RuneCount(h) < s.emitted+n {
		if !s.warned {
			r.log.Warn("highlighter output shorter than its input; printing code unstyled",
				"lang", s.lang, "block", s.start, "line", r.lines.Line())
			s.warned = true
		}
		return chunk
	}

	start, _ := ansi.VisibleIndex(h, s.emitted)
	var st ansi.StyleState
	st.Scan(h[:start])
	rest := h[start:]
	for {
		code, ok := ansi.LeadingCode(rest)
		if !ok || !ansi.IsReset(code) {
			break
		}
		st.Apply(code)
		rest = rest[len(code):]
	}
	end, _ := ansi.VisibleIndex(rest, n)
	return st.Restore() + rest[:end]
}

// codeRow lays out one row of a code block: margin, background, a two-cell
// lead (a colored gap on rows that continue a wrapped line), the code and
// padding to the full block width.
func (r *Renderer) codeRow(content, plain string, continued bool) string {
	bg := r.cfg.Theme.CodeBackground
	lead := "  "
	if continued {
		if gap := r.cfg.Theme.CodeGap; gap != "" {
			lead = gap + " " + bg + " "
		} else {
			lead = "↳ "
		}
	}
	if bg != "" {
		content = strings.ReplaceAll(content, ansi.Reset, ansi.Reset+bg)
		content = strings.ReplaceAll(content, ansi.CSI+"m", ansi.Reset+bg)
	}
	if ansi.NewStyledLine(content, ansi.StyleState{}).State.Active() {
		content += attrsOff
	}
	pad := spaces(r.cfg.Width - 2 - ansi.Width(plain))

	var b strings.Builder
	b.WriteString(spaces(r.cfg.Margin))
	b.WriteString(bg)
	b.WriteString(lead)
	b.WriteString(content)
	b.WriteString(bg)
	b.WriteString(pad)
	b.WriteString(ansi.ResetBackground)
	b.WriteByte('\n')
	return b.String()
}
