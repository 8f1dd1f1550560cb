// shape.go - Operand shapes used by catalogue patterns

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

package timing

import (
	"fmt"
	"strings"
)

// ShapeKind classifies how an operand is compared against a shape.
type ShapeKind int

const (
	Literal  ShapeKind = iota // A, HL, NZ
	Primed                    // AF'
	Indirect                  // (HL), ( BC )
	Indexed                   // (IX+d), (IY-d)
	Memory                    // any single parenthesised group
	Value                     // anything that is not Memory
)

func (k ShapeKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Primed:
		return "primed"
	case Indirect:
		return "indirect"
	case Indexed:
		return "indexed"
	case Memory:
		return "memory"
	case Value:
		return "value"
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// needsNames is true for the kinds that compare against register or
// condition names.
func (k ShapeKind) needsNames() bool {
	switch k {
	case Literal, Primed, Indirect, Indexed:
		return true
	}
	return false
}

// Shape describes the set of operands accepted at one operand position.
type Shape struct {
	Kind  ShapeKind
	Names []string
}

// Register and condition vocabulary.
var (
	Reg8      = Shape{Kind: Literal, Names: []string{"A", "B", "C", "D", "E", "H", "L"}}
	Reg8Index = Shape{Kind: Literal, Names: []string{"IYH", "IYL", "IXH", "IXL"}}
	Reg16     = Shape{Kind: Literal, Names: []string{"AF", "BC", "DE", "HL"}}
	Cond      = Shape{Kind: Literal, Names: []string{"Z", "NZ", "C", "NC", "P", "PE", "PO"}}

	MemReg16 = Shape{Kind: Indirect, Names: []string{"AF", "BC", "DE", "HL"}}
	MemIndex = Shape{Kind: Indexed, Names: []string{"IX", "IY"}}
	Port     = Shape{Kind: Indirect, Names: []string{"C"}}

	Mem = Shape{Kind: Memory}
	Val = Shape{Kind: Value}
)

// Reg returns a literal shape for the named registers or conditions.
func Reg(names ...string) Shape {
	return Shape{Kind: Literal, Names: names}
}

// MemReg returns an indirection through one of the named registers.
func MemReg(names ...string) Shape {
	return Shape{Kind: Indirect, Names: names}
}

// Prime returns the shadow register form of the named registers.
func Prime(names ...string) Shape {
	return Shape{Kind: Primed, Names: names}
}

// Match reports whether the operand belongs to the shape. The operand must be
// trimmed and upper-cased.
func (s Shape) Match(op string) bool {
	switch s.Kind {
	case Literal:
		return s.hasName(op)

	case Primed:
		base, ok := strings.CutSuffix(op, "'")
		return ok && s.hasName(strings.TrimSpace(base))

	case Indirect:
		inner, ok := enclosed(op)
		return ok && s.hasName(strings.TrimSpace(inner))

	case Indexed:
		inner, ok := enclosed(op)
		if !ok {
			return false
		}
		inner = strings.TrimSpace(inner)
		for _, n := range s.Names {
			rest, ok := strings.CutPrefix(inner, n)
			if !ok {
				continue
			}
			rest = strings.TrimSpace(rest)
			if rest == "" || (rest[0] != '+' && rest[0] != '-') {
				continue
			}
			if strings.TrimSpace(rest[1:]) != "" {
				return true
			}
		}
		return false

	case Memory:
		inner, ok := enclosed(op)
		return ok && strings.TrimSpace(inner) != ""

	case Value:
		return isValue(op)
	}
	return false
}

func (s Shape) hasName(op string) bool {
	for _, n := range s.Names {
		if op == n {
			return true
		}
	}
	return false
}

// String renders the shape the way it would be written in source.
func (s Shape) String() string {
	names := strings.Join(s.Names, "|")
	switch s.Kind {
	case Literal:
		return names
	case Primed:
		return names + "'"
	case Indirect:
		return "(" + names + ")"
	case Indexed:
		return "(" + names + "+d)"
	case Memory:
		return "(mem)"
	case Value:
		return "value"
	}
	return s.Kind.String()
}

// isValue is the value half of the value/memory boundary: any non-empty
// operand that is not a single parenthesised group.
func isValue(op string) bool {
	if op == "" {
		return false
	}
	_, mem := enclosed(op)
	return !mem
}

// enclosed returns the interior of op when op is exactly one balanced
// parenthesised group, from its first to its last byte.
func enclosed(op string) (string, bool) {
	if len(op) < 2 || op[0] != '(' || op[len(op)-1] != ')' {
		return "", false
	}
	depth := 0
	for i := 0; i < len(op); i++ {
		if opensQuote(op, i) {
			i = quoteEnd(op, i)
			continue
		}
		switch op[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(op)-1 {
				return "", false
			}
			if depth < 0 {
				return "", false
			}
		}
	}
	if depth != 0 {
		return "", false
	}
	return op[1 : len(op)-1], true
}
