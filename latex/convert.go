package latex

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var symbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "varpi": "ϖ", "rho": "ρ", "sigma": "σ", "tau": "τ",
	"upsilon": "υ", "phi": "φ", "varphi": "φ", "chi": "χ", "psi": "ψ",
	"omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ",
	"Omega": "Ω",

	"cdot": "·", "times": "×", "div": "÷", "pm": "±", "mp": "∓",
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠",
	"approx": "≈", "equiv": "≡", "sim": "∼", "simeq": "≃", "propto": "∝",
	"infty": "∞", "sum": "∑", "prod": "∏", "int": "∫", "oint": "∮",
	"partial": "∂", "nabla": "∇", "forall": "∀", "exists": "∃",
	"in": "∈", "notin": "∉", "subset": "⊂", "subseteq": "⊆", "supset": "⊃",
	"cup": "∪", "cap": "∩", "emptyset": "∅", "setminus": "∖",
	"to": "→", "rightarrow": "→", "leftarrow": "←", "Rightarrow": "⇒",
	"Leftarrow": "⇐", "leftrightarrow": "↔", "Leftrightarrow": "⇔",
	"mapsto": "↦", "implies": "⇒", "iff": "⇔",
	"land": "∧", "wedge": "∧", "lor": "∨", "vee": "∨", "neg": "¬", "lnot": "¬",
	"ldots": "…", "cdots": "⋯", "dots": "…", "angle": "∠", "circ": "∘",
	"degree": "°", "prime": "′", "hbar": "ℏ", "ell": "ℓ",
	"langle": "⟨", "rangle": "⟩", "lfloor": "⌊", "rfloor": "⌋",
	"lceil": "⌈", "rceil": "⌉",
	"quad": "  ", "qquad": "    ",
}

// Commands whose single argument is rendered as plain text.
var passthrough = map[string]bool{
	"text": true, "textrm": true, "textbf": true, "textit": true,
	"mathrm": true, "mathbf": true, "mathit": true, "mathsf": true,
	"mathtt": true, "mathcal": true, "mathbb": true, "operatorname": true,
	"boldsymbol": true,
}

// Sizing and delimiter hints that produce no output of their own.
var dropped = map[string]bool{
	"left": true, "right": true, "big": true, "Big": true, "bigg": true,
	"Bigg": true, "bigl": true, "bigr": true, "Bigl": true, "Bigr": true,
	"displaystyle": true, "limits": true, "nolimits": true,
}

// ToText converts a TeX math expression to plain Unicode text. Superscript
// and subscript markers are kept as written; grouping braces are removed and
// runs of whitespace collapse to a single space.
func ToText(tex string) string {
	p := &converter{src: tex}
	return strings.Join(strings.Fields(p.group(false)), " ")
}

type converter struct {
	src string
	pos int
}

// group converts until the end of input or, when nested, the closing brace.
func (c *converter) group(nested bool) string {
	var b strings.Builder
	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		switch ch {
		case '\\':
			c.pos++
			b.WriteString(c.command())
		case '{':
			c.pos++
			b.WriteString(c.group(true))
		case '}':
			c.pos++
			if nested {
				return b.String()
			}
		default:
			r, size := utf8.DecodeRuneInString(c.src[c.pos:])
			b.WriteRune(r)
			c.pos += size
		}
	}
	return b.String()
}

// command converts the control sequence whose backslash was just consumed.
func (c *converter) command() string {
	if c.pos >= len(c.src) {
		return ""
	}
	name := c.name()
	switch {
	case name == "frac" || name == "dfrac" || name == "tfrac":
		num, den := c.arg(), c.arg()
		return parens(num) + "/" + parens(den)
	case name == "sqrt":
		var index string
		if c.peek() == '[' {
			end := strings.IndexByte(c.src[c.pos:], ']')
			if end >= 0 {
				index = ToText(c.src[c.pos+1 : c.pos+end])
				c.pos += end + 1
			}
		}
		return index + "√" + parens(c.arg())
	case passthrough[name]:
		return c.arg()
	case dropped[name]:
		return ""
	case name == "{" || name == "}" || name == "$" || name == "%" || name == "&" || name == "_" || name == "#":
		return name
	case name == "," || name == ";" || name == ":" || name == " " || name == "\\":
		return " "
	case name == "!":
		return ""
	}
	if s, ok := symbols[name]; ok {
		return s
	}
	return name
}

// name reads a control sequence name: a run of letters or one other rune.
func (c *converter) name() string {
	start := c.pos
	for c.pos < len(c.src) && isLetter(c.src[c.pos]) {
		c.pos++
	}
	if c.pos > start {
		return c.src[start:c.pos]
	}
	_, size := utf8.DecodeRuneInString(c.src[c.pos:])
	c.pos += size
	return c.src[start:c.pos]
}

// arg reads one macro argument: a braced group, a command or a single rune.
func (c *converter) arg() string {
	for c.pos < len(c.src) && c.src[c.pos] == ' ' {
		c.pos++
	}
	if c.pos >= len(c.src) {
		return ""
	}
	switch c.src[c.pos] {
	case '{':
		c.pos++
		return c.group(true)
	case '\\':
		c.pos++
		return c.command()
	}
	r, size := utf8.DecodeRuneInString(c.src[c.pos:])
	c.pos += size
	return string(r)
}

func (c *converter) peek() byte {
	if c.pos < len(c.src) {
		return c.src[c.pos]
	}
	return 0
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// parens wraps s in parentheses unless it is a single number, name or symbol.
func parens(s string) string {
	s = strings.TrimSpace(s)
	atomic := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' {
			atomic = false
			break
		}
	}
	if atomic || utf8.RuneCountInString(s) == 1 {
		return s
	}
	return "(" + s + ")"
}
