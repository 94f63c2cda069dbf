// Package flow renders markdown to styled terminal text as it streams in.
//
// Input is consumed one line at a time. Each line is classified and routed to
// a block renderer; output is produced as a lazy sequence of fragments, each
// one a complete terminal row ending in a newline. Most lines produce their
// output immediately. Tables are held until they end, and fenced code is
// highlighted incrementally, one row per code line, without printing any
// text twice.
//
// Example usage:
//
//	cfg := flow.DefaultConfig()
//	if err := flow.Flow(ctx, os.Stdin, os.Stdout, cfg); err != nil {
//		log.Fatal(err)
//	}
package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/charmbracelet/trickle/latex"
)

// Renderer turns a markdown stream into terminal rows. It owns all parser
// state for one stream and must not be shared between goroutines.
type Renderer struct {
	cfg    Config
	log    *log.Logger
	lines  *LineReader
	inline inline

	queue []string
	done  bool
	err   error

	front     frontmatter
	math      latex.State
	code      *codeSession
	table     table
	lists     listStack
	listOpen  bool
	lastBlank bool
}

// NewRenderer returns a Renderer reading markdown from r.
func NewRenderer(cfg Config, r io.Reader) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if r == nil {
		return nil, errors.New("input reader cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	rd := &Renderer{
		cfg:    cfg,
		log:    logger,
		lines:  NewLineReader(r),
		inline: inline{theme: cfg.Theme, hyperlinks: cfg.Hyperlinks},
	}
	if !cfg.SkipFrontmatter {
		rd.front.state = frontmatterDone
	}
	return rd, nil
}

// Next returns the next rendered fragment. It blocks while waiting for input
// and returns io.EOF after the last fragment. An input error is returned
// once everything read before it has been returned.
func (r *Renderer) Next() (string, error) {
	for len(r.queue) == 0 {
		if r.done {
			if r.err != nil {
				return "", r.err
			}
			return "", io.EOF
		}
		if err := r.step(); err != nil {
			return "", err
		}
	}
	frag := r.queue[0]
	r.queue[0] = ""
	r.queue = r.queue[1:]
	return frag, nil
}

// Flush stops reading, closes any open table or code block and returns the
// fragments not yet handed out by Next.
func (r *Renderer) Flush() []string {
	if !r.done {
		r.finish()
		r.done = true
	}
	out := r.queue
	r.queue = nil
	return out
}

// step reads and renders one input line. An unexpected fault while rendering
// is returned with the line number and stops the renderer.
func (r *Renderer) step() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.done = true
			r.queue = nil
			r.err = fmt.Errorf("line %d: %v", r.lines.Line(), rec)
			err = r.err
		}
	}()

	line, err := r.lines.Next()
	if err != nil {
		r.finish()
		r.done = true
		if err != io.EOF {
			r.err = fmt.Errorf("read input: %w", err)
		}
		return nil
	}
	r.process(line)
	return nil
}

func (r *Renderer) emit(s string) {
	r.queue = append(r.queue, s)
}

// process routes one input line.
func (r *Renderer) process(raw string) {
	if r.front.state != frontmatterDone {
		if r.front.consume(raw) {
			return
		}
		// not frontmatter after all
		for _, line := range r.front.abandon() {
			r.process(line)
		}
	}
	if r.code != nil {
		r.codeLine(raw)
		r.lastBlank = false
		return
	}

	l := Classify(raw)
	if r.cfg.LaTeX && (l.Kind != Fence || r.math.Pending()) {
		text, action := latex.Filter(&r.math, raw)
		switch action {
		case latex.Hold:
			return
		case latex.Block:
			r.flushTable()
			r.breakList()
			r.lastBlank = false
			r.plain(text)
			return
		case latex.Replace:
			l = Classify(text)
		}
	}
	r.dispatch(l)
}

// dispatch renders a classified line outside of code blocks.
func (r *Renderer) dispatch(l Line) {
	if l.Kind == Blank {
		r.flushTable()
		if !r.lastBlank {
			r.emit("\n")
		}
		r.lastBlank = true
		return
	}

	continuation := l.Kind == Text && r.listOpen && leadingSpaces(l.Raw) >= 2
	if l.Kind != ListItem && !continuation {
		r.breakList()
	}
	if l.Kind != TableRow {
		r.flushTable()
	}
	r.lastBlank = false

	switch l.Kind {
	case Fence:
		r.openCode(l)
	case TableRow:
		r.table.add(l.Raw)
	case ListItem:
		r.listItem(l)
	case Heading:
		r.heading(l)
	case Rule:
		r.rule()
	default:
		if continuation {
			r.listContinuation(l)
			return
		}
		r.paragraph(l.Raw)
	}
}

// breakList ends the current list, so a later list numbers from one.
func (r *Renderer) breakList() {
	r.lists.restart()
	r.listOpen = false
}

// finish flushes every piece of buffered state at the end of the stream.
func (r *Renderer) finish() {
	for _, line := range r.front.abandon() {
		r.process(line)
	}
	if raw, ok := r.math.Flush(); ok {
		for _, line := range strings.Split(raw, "\n") {
			if r.code != nil {
				r.codeLine(line)
				continue
			}
			r.dispatch(Classify(line))
		}
	}
	if r.code != nil {
		r.closeCode()
	}
	r.flushTable()
}

// Flow renders markdown read from r to w until r is exhausted.
//
// Fragments are written as soon as they are produced. Cancellation of ctx is
// noticed between fragments: pending table and code output is flushed and
// Flow returns nil for context.Canceled, or the error for a deadline. A
// closed pipe on w ends rendering quietly.
func Flow(ctx context.Context, r io.Reader, w io.Writer, cfg Config) error {
	switch {
	case ctx == nil:
		return errors.New("context cannot be nil")
	case r == nil:
		return errors.New("input reader cannot be nil")
	case w == nil:
		return errors.New("output writer cannot be nil")
	}

	rd, err := NewRenderer(cfg, r)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	var written int64
	write := func(s string) error {
		n, err := io.WriteString(w, s)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("write failed after %d bytes: %w", written, err)
		}
		return nil
	}

	for {
		if ctx.Err() != nil {
			for _, frag := range rd.Flush() {
				if err := write(frag); err != nil {
					return quiet(err)
				}
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		}

		frag, err := rd.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := write(frag); err != nil {
			return quiet(err)
		}
	}
}

// quiet drops broken pipe errors: the reader went away, which is not a
// rendering failure.
func quiet(err error) error {
	if errors.Is(err, syscall.EPIPE) {
		return nil
	}
	return err
}

// RenderString renders a complete markdown document.
func RenderString(cfg Config, markdown string) (string, error) {
	var b strings.Builder
	if err := Flow(context.Background(), strings.NewReader(markdown), &b, cfg); err != nil {
		return "", err
	}
	return b.String(), nil
}
