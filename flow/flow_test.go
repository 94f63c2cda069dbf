package flow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"
	"testing/iotest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/muesli/termenv"

	"github.com/charmbracelet/trickle/ansi"
	"github.com/charmbracelet/trickle/highlight"
)

const document = `---
title: sample
---
# Trickle

Some **bold** text, some *italic* text and a [link](https://charm.sh).

## Lists

1. first
2. second
   - nested
3. third

| Name | Value |
|------|-------|
| a    | 1     |
| b    | 22    |

` + "```go\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n```" + `

---

Math like \(\alpha + \beta\) inline.
`

func TestRenderDocument(t *testing.T) {
	cfg := testConfig()
	cfg.LaTeX = true
	cfg.Highlighter = highlight.NewChroma("dracula", termenv.TrueColor)
	out := render(t, cfg, document)

	vis := visible(out)
	if strings.Contains(out, "title: sample") {
		t.Error("frontmatter was rendered")
	}
	for _, want := range []string{"Trickle", "▌ Lists", "• nested", "α + β", "fmt.Println"} {
		if !strings.Contains(strings.Join(vis, "\n"), want) {
			t.Errorf("output lacks %q:\n%s", want, strings.Join(vis, "\n"))
		}
	}
	for _, row := range vis {
		if w := ansi.Width(row); w > testWidth+DefaultMargin {
			t.Errorf("row %q is %d cells wide", row, w)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output does not end with a newline")
	}

	bytewise := renderReader(t, cfg, iotest.OneByteReader(strings.NewReader(document)))
	if bytewise != out {
		t.Errorf("output depends on read boundaries:\n%s", cmp.Diff(out, bytewise))
	}
}

func TestRendererNext(t *testing.T) {
	cfg := testConfig()
	want := render(t, cfg, document)

	rd, err := NewRenderer(cfg, strings.NewReader(document))
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for {
		frag, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !strings.HasSuffix(frag, "\n") {
			t.Errorf("fragment %q is not a complete row", frag)
		}
		b.WriteString(frag)
	}
	if b.String() != want {
		t.Errorf("Next output differs from Flow:\n%s", cmp.Diff(want, b.String()))
	}
	if _, err := rd.Next(); err != io.EOF {
		t.Errorf("Next after the end = %v, want EOF", err)
	}
}

func TestRendererFlush(t *testing.T) {
	cfg := testConfig()
	rd, err := NewRenderer(cfg, strings.NewReader("```\nx\n"))
	if err != nil {
		t.Fatal(err)
	}
	first, err := rd.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(first, ansi.ResetBackground+"\n") {
		t.Errorf("first fragment = %q, want the block's top row", first)
	}
	// only the fence was rendered; Flush closes the block without reading on
	rest := rd.Flush()
	if len(rest) != 1 || !strings.HasSuffix(rest[0], ansi.Reset+"\n") {
		t.Fatalf("Flush = %q, want the block's bottom row", rest)
	}

	rd, _ = NewRenderer(cfg, strings.NewReader("| A |\n|---|\n| 1 |\n"))
	for range 3 {
		rd.step()
	}
	held := rd.Flush()
	if diff := cmp.Diff([]string{"   A", "   1"}, visible(strings.Join(held, ""))); diff != "" {
		t.Errorf("flushed table mismatch (-want +got):\n%s", diff)
	}
	if _, err := rd.Next(); err != io.EOF {
		t.Errorf("Next after Flush = %v, want EOF", err)
	}
}

func TestBlankLinesCollapse(t *testing.T) {
	out := render(t, testConfig(), "a\n\n\n\nb\n")
	if diff := cmp.Diff([]string{"  a", "", "  b"}, visible(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestStylesDoNotLeakAcrossLines(t *testing.T) {
	out := render(t, testConfig(), "**a** b\nc\n**open\nclose**\n")
	raw := rows(out)
	if len(raw) != 4 {
		t.Fatalf("rows = %q", raw)
	}
	for _, row := range raw[1:] {
		if strings.Contains(row, ansi.BoldOn) {
			t.Errorf("row %q is bold", row)
		}
	}
	if diff := cmp.Diff([]string{"  a b", "  c", "  **open", "  close**"}, visible(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFrontmatter(t *testing.T) {
	rule := "  " + strings.Repeat("─", testWidth)
	tests := []struct {
		name string
		skip bool
		in   string
		want []string
	}{
		{"skipped", true, "---\ntitle: x\n---\ntext\n", []string{"  text"}},
		{"dot terminator", true, "---\na: 1\n...\ntext\n", []string{"  text"}},
		{"unterminated is replayed", true, "---\ntitle: x\n", []string{rule, "  title: x"}},
		{"only at the start", true, "text\n---\n", []string{"  text", rule}},
		{"disabled", false, "---\ntitle: x\n---\n", []string{rule, "  title: x", rule}},
		{"yaml shapes", true, "---\ntags:\n  - a\n- b\n\n\"k\": v\n---\ntext\n", []string{"  text"}},
		{"prose is not frontmatter", true, "---\nSome text\n---\nafter\n", []string{rule, "  Some text", rule, "  after"}},
		{"heading is not frontmatter", true, "---\nkey: v\n## Title\n", []string{rule, "  key: v", "  ▌ Title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.SkipFrontmatter = tt.skip
			if diff := cmp.Diff(tt.want, visible(render(t, cfg, tt.in))); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFrontmatterIsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("---\n")
	for range maxFrontmatterLines + 5 {
		b.WriteString("a: 1\n")
	}
	b.WriteString("---\n")
	rows := visible(render(t, testConfig(), b.String()))
	if len(rows) != maxFrontmatterLines+7 {
		t.Fatalf("got %d rows, want %d", len(rows), maxFrontmatterLines+7)
	}
	if rows[1] != "  a: 1" {
		t.Errorf("rows[1] = %q", rows[1])
	}
}

func TestLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"inline", `Inline \(\alpha + b\) test.` + "\n", []string{"  Inline α + b test."}},
		{"display block", "$$\n\\alpha \\times \\beta\n$$\n", []string{"  α × β"}},
		{"across lines", "Before \\(a\nb\\) after.\n", []string{"  Before a b after."}},
		{"unclosed is replayed", "text \\(a b\n", []string{"  text (a b"}},
		{"heading", "## Sum \\(\\alpha\\)\n", []string{"  ▌ Sum α"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.LaTeX = true
			if diff := cmp.Diff(tt.want, visible(render(t, cfg, tt.in))); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLaTeXLeavesCodeAlone(t *testing.T) {
	cfg := testConfig()
	cfg.LaTeX = true
	out := render(t, cfg, "```\n$$x$$ \\(y\\)\n```\n")
	if diff := cmp.Diff([]string{`$$x$$ \(y\)`}, codeText(t, out)); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestLaTeXDisabled(t *testing.T) {
	out := render(t, testConfig(), `a \(\alpha\)`+"\n")
	if diff := cmp.Diff([]string{`  a (\alpha)`}, visible(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadings(t *testing.T) {
	cfg := testConfig()
	out := render(t, cfg, "# Hi\n## Sub\n### Third\n###### Sixth\n")
	vis := visible(out)
	if len(vis) != 4 {
		t.Fatalf("rows = %q", vis)
	}

	if got, want := strings.Index(vis[0], "Hi"), cfg.Margin+(cfg.Width-2)/2; got != want {
		t.Errorf("H1 text starts at %d, want %d (centered)", got, want)
	}
	raw := rows(out)
	if !strings.HasPrefix(raw[0], "  "+cfg.Theme.Band) {
		t.Errorf("H1 is not on the band: %q", raw[0])
	}
	if ansi.Width(raw[0]) != cfg.Margin+cfg.Width {
		t.Errorf("H1 band is %d wide", ansi.Width(raw[0]))
	}

	if vis[1] != "  ▌ Sub" {
		t.Errorf("H2 = %q", vis[1])
	}
	if vis[2] != "  Third" || !strings.Contains(raw[2], cfg.Theme.Headings[1]) {
		t.Errorf("H3 = %q", raw[2])
	}
	if vis[3] != "  Sixth" || !strings.Contains(raw[3], cfg.Theme.Headings[4]) {
		t.Errorf("H6 = %q", raw[3])
	}
}

func TestHeadingStripsMarkupInBand(t *testing.T) {
	out := render(t, testConfig(), "# A **bold** title\n")
	if strings.Contains(out, ansi.BoldOn+"bold") {
		t.Errorf("H1 keeps inline styles: %q", out)
	}
	if !strings.Contains(visible(out)[0], "A bold title") {
		t.Errorf("H1 = %q", visible(out)[0])
	}
}

func TestRule(t *testing.T) {
	cfg := testConfig()
	out := render(t, cfg, "text\n***\n___\n")
	rule := "  " + strings.Repeat("─", testWidth)
	if diff := cmp.Diff([]string{"  text", rule, rule}, visible(out)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParagraphWraps(t *testing.T) {
	out := render(t, testConfig(), strings.Repeat("word ", 20)+"\n")
	vis := visible(out)
	if len(vis) < 3 {
		t.Fatalf("expected wrapping, got %q", vis)
	}
	for _, row := range vis {
		if !strings.HasPrefix(row, "  word") || ansi.Width(row) > testWidth+DefaultMargin {
			t.Errorf("row %q", row)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"default", func(c *Config) { *c = DefaultConfig() }, ""},
		{"nil highlighter", func(c *Config) { c.Highlighter = nil }, "highlighter cannot be nil"},
		{"narrow", func(c *Config) { c.Width = MinWidth - 1 }, "below the minimum"},
		{"negative margin", func(c *Config) { c.Margin = -1 }, "invalid margin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
			if _, err := NewRenderer(cfg, strings.NewReader("")); err == nil {
				t.Error("NewRenderer accepted an invalid config")
			}
		})
	}
}

func TestFlowArguments(t *testing.T) {
	cfg := testConfig()
	var buf bytes.Buffer
	//nolint:staticcheck
	if err := Flow(nil, strings.NewReader(""), &buf, cfg); err == nil {
		t.Error("nil context accepted")
	}
	if err := Flow(context.Background(), nil, &buf, cfg); err == nil {
		t.Error("nil reader accepted")
	}
	if err := Flow(context.Background(), strings.NewReader(""), nil, cfg); err == nil {
		t.Error("nil writer accepted")
	}
	if _, err := NewRenderer(cfg, nil); err == nil {
		t.Error("NewRenderer accepted a nil reader")
	}
}

func TestEmptyInput(t *testing.T) {
	if out := render(t, testConfig(), ""); out != "" {
		t.Errorf("got %q", out)
	}
}

// cancelingReader hands out its chunks one read at a time and cancels the
// context when it hands out the last one.
type cancelingReader struct {
	t      *testing.T
	chunks []string
	cancel context.CancelFunc
}

func (r *cancelingReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		r.t.Error("read after cancellation")
		return 0, io.EOF
	}
	if len(r.chunks) == 1 {
		r.cancel()
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestFlowCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := &cancelingReader{
		t:      t,
		chunks: []string{"```\nx\n", "y\nnever rendered\n"},
		cancel: cancel,
	}
	var buf bytes.Buffer
	if err := Flow(ctx, in, &buf, testConfig()); err != nil {
		t.Fatalf("Flow: %v", err)
	}
	out := buf.String()
	if diff := cmp.Diff([]string{"x", "y"}, codeText(t, out)); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(out, ansi.Reset+"\n") {
		t.Errorf("open block not closed on cancel: %q", out)
	}
}

func TestFlowDeadline(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	var buf bytes.Buffer
	err := Flow(ctx, strings.NewReader("text\n"), &buf, testConfig())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

type failingWriter struct {
	err     error
	allowed int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.allowed == 0 {
		return 0, w.err
	}
	w.allowed--
	return len(p), nil
}

func TestFlowWriteErrors(t *testing.T) {
	in := "a\nb\nc\n"
	epipe := &failingWriter{err: fmt.Errorf("write /dev/stdout: %w", syscall.EPIPE), allowed: 1}
	if err := Flow(context.Background(), strings.NewReader(in), epipe, testConfig()); err != nil {
		t.Errorf("broken pipe reported: %v", err)
	}

	full := errors.New("disk full")
	err := Flow(context.Background(), strings.NewReader(in), &failingWriter{err: full}, testConfig())
	if !errors.Is(err, full) {
		t.Errorf("err = %v, want the write error", err)
	}
}

func TestFlowReadError(t *testing.T) {
	boom := errors.New("connection reset")
	in := io.MultiReader(strings.NewReader("a\n```\ncode"), iotest.ErrReader(boom))
	var buf bytes.Buffer
	err := Flow(context.Background(), in, &buf, testConfig())
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "read input") {
		t.Fatalf("err = %v, want the read error", err)
	}
	vis := visible(buf.String())
	if len(vis) == 0 || vis[0] != "  a" {
		t.Fatalf("rows = %q", vis)
	}
	if diff := cmp.Diff([]string{"code"}, codeText(t, strings.Join(rows(buf.String())[1:], "\n")+"\n")); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}
