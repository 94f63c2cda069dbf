package flow

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/charmbracelet/trickle/highlight"
	"github.com/charmbracelet/trickle/theme"
)

const (
	// DefaultWidth is the content width used when the terminal size is
	// unknown: 80 columns minus the margin.
	DefaultWidth = 78
	// DefaultMargin is the number of spaces every rendered line starts with.
	DefaultMargin = 2
	// MinWidth is the narrowest content width the renderer accepts.
	MinWidth = 20
	// DefaultLanguage is the code language used for untagged fences.
	DefaultLanguage = "plaintext"
)

// Config configures a Renderer.
type Config struct {
	Width  int // content width in cells, margin excluded
	Margin int // spaces before every line

	Theme       theme.Theme
	Highlighter highlight.Highlighter
	// DefaultLanguage highlights fences that carry no language tag.
	DefaultLanguage string

	LaTeX           bool // convert $$..$$, \[..\] and \(..\) math to text
	SkipFrontmatter bool // drop a leading YAML frontmatter block
	Hyperlinks      bool // emit OSC 8 links instead of "text (url)"

	Logger *log.Logger // nil discards diagnostics
}

// DefaultConfig returns a configuration with the built-in theme and chroma
// highlighting for a true-color terminal.
func DefaultConfig() Config {
	th := theme.Default(termenv.TrueColor)
	return Config{
		Width:           DefaultWidth,
		Margin:          DefaultMargin,
		Theme:           th,
		Highlighter:     highlight.NewChroma(th.CodeTheme, termenv.TrueColor),
		DefaultLanguage: DefaultLanguage,
		SkipFrontmatter: true,
		Hyperlinks:      true,
	}
}

// Validate checks config parameters for safety.
func (c Config) Validate() error {
	if c.Highlighter == nil {
		return errors.New("highlighter cannot be nil")
	}
	if c.Width < MinWidth {
		return fmt.Errorf("width %d is below the minimum of %d", c.Width, MinWidth)
	}
	if c.Margin < 0 {
		return fmt.Errorf("invalid margin %d (must be >= 0)", c.Margin)
	}
	return nil
}
