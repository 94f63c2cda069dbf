package flow

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/charmbracelet/trickle/ansi"
	"github.com/charmbracelet/trickle/highlight"
	"github.com/charmbracelet/trickle/theme"
)

const testWidth = 40

// testConfig returns a small, deterministic configuration: the built-in
// palette in true color and no syntax highlighting.
func testConfig() Config {
	return Config{
		Width:           testWidth,
		Margin:          DefaultMargin,
		Theme:           theme.Default(termenv.TrueColor),
		Highlighter:     highlight.None,
		DefaultLanguage: DefaultLanguage,
		SkipFrontmatter: true,
		Hyperlinks:      true,
	}
}

// withLog points cfg's logger at a buffer and returns it.
func withLog(cfg *Config) *bytes.Buffer {
	var buf bytes.Buffer
	cfg.Logger = log.New(&buf)
	return &buf
}

func render(t *testing.T, cfg Config, md string) string {
	t.Helper()
	out, err := RenderString(cfg, md)
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	return out
}

func renderReader(t *testing.T, cfg Config, r io.Reader) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Flow(context.Background(), r, &buf, cfg); err != nil {
		t.Fatalf("Flow: %v", err)
	}
	return buf.String()
}

// visible returns the rendered rows without escape sequences or trailing
// spaces.
func visible(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	rows := strings.Split(ansi.Strip(out), "\n")
	for i, r := range rows {
		rows[i] = strings.TrimRight(r, " ")
	}
	return rows
}

// rows splits rendered output into its raw rows.
func rows(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// codeText extracts the code of the only fenced block in out, one entry per
// row, without margin, lead and padding.
func codeText(t *testing.T, out string) []string {
	t.Helper()
	vis := visible(out)
	if len(vis) < 2 {
		t.Fatalf("no code block in %q", out)
	}
	if vis[0] != "" || vis[len(vis)-1] != "" {
		t.Fatalf("code block is not framed by padding rows: %q", vis)
	}
	var code []string
	for _, r := range vis[1 : len(vis)-1] {
		r = strings.TrimPrefix(r, spaces(DefaultMargin))
		if strings.HasPrefix(r, "↳ ") {
			code = append(code, strings.TrimPrefix(r, "↳ "))
			continue
		}
		code = append(code, strings.TrimPrefix(r, "  "))
	}
	return code
}
