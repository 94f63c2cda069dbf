// Package highlight turns source code into terminal-styled text.
//
// Highlighters are pure: the same language and code always produce the same
// output. Output for a longer input may restyle characters that were already
// seen, since lexers re-read earlier text in light of what follows.
package highlight

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"

	"github.com/charmbracelet/trickle/ansi"
)

// Highlighter styles code written in language.
type Highlighter interface {
	Highlight(language, code string) (string, error)
}

// Func adapts an ordinary function to the Highlighter interface.
type Func func(language, code string) (string, error)

// Highlight calls f(language, code).
func (f Func) Highlight(language, code string) (string, error) {
	return f(language, code)
}

// None returns code unchanged.
var None = Func(func(_, code string) (string, error) {
	return code, nil
})

// Chroma highlights with a chroma style. Token styles only ever set the
// foreground, bold, italic and underline attributes and are closed with the
// matching "off" codes, never with a full reset, so the caller's background
// survives across tokens. Chroma is safe for concurrent use.
type Chroma struct {
	style   *chroma.Style
	profile termenv.Profile

	mu     sync.RWMutex
	lexers map[string]chroma.Lexer
	spans  map[chroma.TokenType]span
}

type span struct {
	open, close string
}

// NewChroma returns a highlighter using the named chroma style, degraded to
// profile p. Unknown styles fall back to chroma's default.
func NewChroma(style string, p termenv.Profile) *Chroma {
	s, ok := styles.Registry[strings.ToLower(style)]
	if !ok {
		s = styles.Fallback
	}
	return &Chroma{
		style:   s,
		profile: p,
		lexers:  make(map[string]chroma.Lexer),
		spans:   make(map[chroma.TokenType]span),
	}
}

// HasStyle reports whether chroma knows a style called name.
func HasStyle(name string) bool {
	_, ok := styles.Registry[strings.ToLower(name)]
	return ok
}

// StyleNames lists the chroma styles, sorted.
func StyleNames() []string {
	names := styles.Names()
	sort.Strings(names)
	return names
}

// Highlight implements Highlighter. Unknown languages are tokenised as plain
// text. A panic inside a lexer is returned as an error.
func (c *Chroma) Highlight(language, code string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("highlight %s: lexer panic: %v", language, r)
		}
	}()

	it, err := c.lexer(language).Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("highlight %s: %w", language, err)
	}

	var b strings.Builder
	b.Grow(len(code) * 2)
	for _, tok := range it.Tokens() {
		sp := c.span(tok.Type)
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if part == "" {
				continue
			}
			if sp.open == "" {
				b.WriteString(part)
				continue
			}
			b.WriteString(sp.open)
			b.WriteString(part)
			b.WriteString(sp.close)
		}
	}
	return b.String(), nil
}

func (c *Chroma) lexer(language string) chroma.Lexer {
	key := strings.ToLower(strings.TrimSpace(language))

	c.mu.RLock()
	l, ok := c.lexers[key]
	c.mu.RUnlock()
	if ok {
		return l
	}

	if key != "" {
		l = lexers.Get(key)
		if l == nil {
			l = lexers.Match("file." + key)
		}
	}
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	c.mu.Lock()
	c.lexers[key] = l
	c.mu.Unlock()
	return l
}

func (c *Chroma) span(tt chroma.TokenType) span {
	c.mu.RLock()
	sp, ok := c.spans[tt]
	c.mu.RUnlock()
	if ok {
		return sp
	}

	entry := c.style.Get(tt)
	var on, off []string
	if entry.Colour.IsSet() {
		if col := c.profile.Color(entry.Colour.String()); col != nil {
			if seq := col.Sequence(false); seq != "" {
				on = append(on, seq)
				off = append(off, "39")
			}
		}
	}
	if entry.Bold == chroma.Yes {
		on = append(on, "1")
		off = append(off, "22")
	}
	if entry.Italic == chroma.Yes {
		on = append(on, "3")
		off = append(off, "23")
	}
	if entry.Underline == chroma.Yes {
		on = append(on, "4")
		off = append(off, "24")
	}
	sp = span{open: ansi.SGR(on...), close: ansi.SGR(off...)}

	c.mu.Lock()
	c.spans[tt] = sp
	c.mu.Unlock()
	return sp
}
