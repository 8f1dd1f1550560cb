// pattern.go - Structural instruction patterns and instruction splitting

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

package timing

import (
	"strings"
	"unicode"
)

// Pattern is the shape of an instruction: a set of accepted mnemonics and
// zero, one or two operand shapes.
type Pattern struct {
	Mnemonics []string
	Operands  []Shape
}

// P is shorthand for building a catalogue pattern from a "|" separated
// mnemonic list.
func P(mnemonics string, operands ...Shape) Pattern {
	return Pattern{Mnemonics: strings.Split(mnemonics, "|"), Operands: operands}
}

// Match reports whether the whole instruction has this pattern's shape.
func (p Pattern) Match(instruction string) bool {
	ins, ok := split(instruction)
	return ok && p.match(ins)
}

func (p Pattern) match(ins parsed) bool {
	if len(ins.operands) != len(p.Operands) {
		return false
	}
	if !p.hasMnemonic(ins.mnemonic) {
		return false
	}
	for i, s := range p.Operands {
		if !s.Match(ins.operands[i]) {
			return false
		}
	}
	return true
}

func (p Pattern) hasMnemonic(m string) bool {
	for _, n := range p.Mnemonics {
		if m == n {
			return true
		}
	}
	return false
}

func (p Pattern) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(p.Mnemonics, "|"))
	for i, s := range p.Operands {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// parsed is an instruction broken into its upper-cased mnemonic and its
// trimmed, upper-cased operands.
type parsed struct {
	mnemonic string
	operands []string
}

// split breaks an instruction into mnemonic and operands. The mnemonic ends
// at the first whitespace; operands are separated by commas outside
// parentheses and quotes. Empty operands are kept so that "LD A," never matches.
func split(instruction string) (parsed, bool) {
	s := strings.ToUpper(strings.TrimSpace(instruction))
	if s == "" {
		return parsed{}, false
	}

	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return parsed{mnemonic: s}, true
	}

	ins := parsed{mnemonic: s[:end]}
	rest := strings.TrimSpace(s[end:])

	depth := 0
	start := 0
	for i := 0; i < len(rest); i++ {
		if opensQuote(rest, i) {
			i = quoteEnd(rest, i)
			continue
		}
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				ins.operands = append(ins.operands, strings.TrimSpace(rest[start:i]))
				start = i + 1
			}
		}
	}
	ins.operands = append(ins.operands, strings.TrimSpace(rest[start:]))

	return ins, true
}

// opensQuote reports whether s[i] starts a string or character literal. A
// quote straight after a letter or digit is the shadow register mark of AF'.
func opensQuote(s string, i int) bool {
	switch s[i] {
	case '"':
		return true
	case '\'':
		if i == 0 {
			return true
		}
		prev := rune(s[i-1])
		return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
	}
	return false
}

// quoteEnd returns the index of the quote closing the literal opened at s[i],
// or len(s) when it is not closed.
func quoteEnd(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(s)
}
