package ansi

import (
	"strings"
)

// StyleState tracks which SGR attributes and which OSC 8 hyperlink are active
// after a run of text has been written to a terminal.
type StyleState struct {
	codes []string
	link  string
}

// Apply updates the state with a single escape sequence.
func (s *StyleState) Apply(seq string) {
	if link, open := isLink(seq); link {
		if open {
			s.link = seq
		} else {
			s.link = ""
		}
		return
	}
	if !strings.HasPrefix(seq, CSI) || !strings.HasSuffix(seq, "m") {
		return
	}
	params := seq[len(CSI) : len(seq)-1]
	first, _, _ := strings.Cut(params, ";")
	if first == "" || first == "0" || first == "00" {
		s.codes = s.codes[:0]
		if params == "" || params == first {
			return
		}
	}
	if IsReset(seq) {
		for _, p := range strings.Split(params, ";") {
			if slot := slotOf(p); slot != "" {
				s.drop(slot)
			}
		}
		return
	}
	s.codes = append(s.codes, seq)
}

// Scan applies every escape sequence found in text, in order.
func (s *StyleState) Scan(text string) {
	for _, c := range Codes(text) {
		s.Apply(c)
	}
}

// Active reports whether any attribute or hyperlink is open.
func (s StyleState) Active() bool {
	return len(s.codes) > 0 || s.link != ""
}

// Codes returns the open SGR sequences, oldest first.
func (s StyleState) Codes() []string {
	return append([]string(nil), s.codes...)
}

// Restore returns the sequences that re-establish this state on a fresh line.
func (s StyleState) Restore() string {
	return s.link + strings.Join(s.codes, "")
}

// Close returns the sequences that end this state: the hyperlink terminator
// when a link is open, followed by a full reset.
func (s StyleState) Close() string {
	if s.link != "" {
		return LinkEnd + Reset
	}
	return Reset
}

// drop removes the most recent single-parameter code occupying slot.
func (s *StyleState) drop(slot string) {
	kept := s.codes[:0]
	for _, c := range s.codes {
		p := c[len(CSI) : len(c)-1]
		if slotOf(p) == slot && !IsReset(c) {
			continue
		}
		kept = append(kept, c)
	}
	s.codes = kept
}

// slotOf names the attribute a parameter list affects, for lists that start
// with a recognizable attribute. Empty means "unknown".
func slotOf(params string) string {
	first, _, _ := strings.Cut(params, ";")
	switch first {
	case "1", "2", "22":
		return "weight"
	case "3", "23":
		return "italic"
	case "4", "24":
		return "underline"
	case "38", "39", "30", "31", "32", "33", "34", "35", "36", "37",
		"90", "91", "92", "93", "94", "95", "96", "97":
		return "fg"
	case "48", "49", "40", "41", "42", "43", "44", "45", "46", "47",
		"100", "101", "102", "103", "104", "105", "106", "107":
		return "bg"
	}
	return ""
}

// StyledLine is a rendered line together with the style state open at its
// end.
type StyledLine struct {
	Text  string
	State StyleState
}

// NewStyledLine computes the state left open by text, starting from carry.
func NewStyledLine(text string, carry StyleState) StyledLine {
	st := StyleState{codes: append([]string(nil), carry.codes...), link: carry.link}
	st.Scan(text)
	return StyledLine{Text: text, State: st}
}
