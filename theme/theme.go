// Package theme holds the palettes the renderer draws with. A Theme is a set
// of ready-made SGR sequences, already degraded to the terminal's color
// profile, so renderers only concatenate strings.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gansi "github.com/charmbracelet/glamour/ansi"
	gstyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"github.com/sahilm/fuzzy"

	"github.com/charmbracelet/trickle/ansi"
)

// DefaultName is the name of the built-in palette.
const DefaultName = "trickle"

// ErrUnknown is returned by Load for names that match no theme.
var ErrUnknown = errors.New("unknown style")

// Theme is a renderer palette. Every field is a complete escape sequence or
// the empty string for "no styling".
type Theme struct {
	Name string

	// Accent colors list bullets, numbers and the level-two heading bar.
	Accent string
	// Band styles the full-width level-one heading.
	Band string
	// Headings styles the text of levels two through six.
	Headings [5]string
	Rule     string
	Link     string

	// InlineCode is turned off with a background reset, so it should only set
	// a background.
	InlineCode string
	// CodeBackground fills every row of a fenced code block.
	CodeBackground string
	// CodeGap marks rows that continue a code line too wide for the block.
	CodeGap string

	TableHeader string
	TableRows   [2]string

	// CodeTheme names the chroma style used for fenced code.
	CodeTheme string
}

// Default returns the built-in palette rendered for profile p.
func Default(p termenv.Profile) Theme {
	const (
		symbol = "#af82e6"
		bright = "#dec3fe"
		dark   = "#36244d"
	)
	return Theme{
		Name:   DefaultName,
		Accent: fg(p, symbol),
		Band:   ansi.BoldOn + bg(p, dark) + fg(p, bright),
		Headings: [5]string{
			ansi.BoldOn + fg(p, bright),
			fg(p, bright),
			fg(p, symbol),
			fg(p, "#9b78c8"),
			fg(p, "#7d62a1"),
		},
		Rule:           fg(p, symbol),
		Link:           ansi.UnderlineOn + fg(p, symbol),
		InlineCode:     bg(p, "#310055"),
		CodeBackground: bg(p, "#24001a"),
		CodeGap:        bg(p, "#120010"),
		TableHeader:    bg(p, "#1d0031"),
		TableRows:      [2]string{bg(p, "#13001e"), bg(p, "#1b0029")},
		CodeTheme:      "monokai",
	}
}

// Plain returns a palette without any color, for dumb terminals and files.
func Plain() Theme {
	return Theme{
		Name:        "notty",
		Band:        ansi.BoldOn,
		Headings:    [5]string{ansi.BoldOn, ansi.BoldOn, ansi.BoldOn, "", ""},
		Link:        ansi.UnderlineOn,
		TableHeader: ansi.BoldOn,
		CodeTheme:   "noop",
	}
}

// FromGlamour overlays the colors of a glamour style config on base. Only the
// elements both renderers share are taken: headings, links, rules, inline
// code and the code block's chroma theme.
func FromGlamour(name string, cfg *gansi.StyleConfig, base Theme, p termenv.Profile) Theme {
	t := base
	t.Name = name
	if cfg == nil {
		return t
	}

	if c := str(cfg.H1.BackgroundColor); c != "" {
		t.Band = ansi.BoldOn + bg(p, c) + fg(p, str(cfg.H1.Color))
		t.Accent = fg(p, c)
	} else if c := str(cfg.H1.Color); c != "" {
		t.Band = ansi.BoldOn + fg(p, c)
	}
	levels := []gansi.StyleBlock{cfg.H2, cfg.H3, cfg.H4, cfg.H5, cfg.H6}
	for i, h := range levels {
		c := str(h.Color)
		if c == "" {
			c = str(cfg.Heading.Color)
		}
		if c == "" {
			continue
		}
		t.Headings[i] = fg(p, c)
		if i == 0 || isTrue(h.Bold) || (h.Bold == nil && isTrue(cfg.Heading.Bold)) {
			t.Headings[i] = ansi.BoldOn + t.Headings[i]
		}
		if i == 0 && t.Accent == base.Accent {
			t.Accent = fg(p, c)
		}
	}
	if c := str(cfg.HorizontalRule.Color); c != "" {
		t.Rule = fg(p, c)
	}
	if c := str(cfg.Link.Color); c != "" {
		t.Link = ansi.UnderlineOn + fg(p, c)
	}
	if c := str(cfg.Code.BackgroundColor); c != "" {
		t.InlineCode = bg(p, c)
	}
	if cfg.CodeBlock.Theme != "" {
		t.CodeTheme = cfg.CodeBlock.Theme
	}
	return t
}

// Load returns the theme called name for profile p. The built-in palette is
// called DefaultName; every glamour standard style is also available.
func Load(name string, p termenv.Profile) (Theme, error) {
	if name == "" || name == DefaultName {
		return Default(p), nil
	}
	cfg, ok := gstyles.DefaultStyles[name]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknown, name)
		if s := Suggest(name, Names()); s != "" {
			err = fmt.Errorf("%w, did you mean %q?", err, s)
		}
		return Default(p), err
	}
	base := Default(p)
	if p == termenv.Ascii || name == gstyles.NoTTYStyle || name == gstyles.AsciiStyle {
		base = Plain()
	}
	return FromGlamour(name, cfg, base, p), nil
}

// LoadFile reads a glamour JSON style file and overlays it on the built-in
// palette.
func LoadFile(path string, p termenv.Profile) (Theme, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Default(p), fmt.Errorf("read style: %w", err)
	}
	var cfg gansi.StyleConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Default(p), fmt.Errorf("parse style %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromGlamour(name, &cfg, Default(p), p), nil
}

// Names lists every theme Load accepts, built-in first.
func Names() []string {
	names := make([]string, 0, len(gstyles.DefaultStyles))
	for n := range gstyles.DefaultStyles {
		names = append(names, n)
	}
	sort.Strings(names)
	return append([]string{DefaultName}, names...)
}

// Suggest returns the candidate that best matches a mistyped name, or "".
func Suggest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func fg(p termenv.Profile, color string) string {
	return sequence(p, color, false)
}

func bg(p termenv.Profile, color string) string {
	return sequence(p, color, true)
}

func sequence(p termenv.Profile, color string, background bool) string {
	c := p.Color(color)
	if c == nil {
		return ""
	}
	return ansi.SGR(c.Sequence(background))
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
