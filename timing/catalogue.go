// catalogue.go - Priority ordered Z80 instruction timing catalogue

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later

Timings are in nops (CPC NOP-equivalent cycles), from
http://quasar.cpcscene.net/doku.php?id=iassem:timings
*/

package timing

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// Entry is one catalogue line.
type Entry struct {
	Group   string
	Pattern Pattern
	Timing  Timing
}

func (e Entry) String() string {
	return fmt.Sprintf("%-8s %-40s %s", e.Group, e.Pattern, e.Timing)
}

// Catalogue is the ordered list of patterns. The first matching entry wins,
// so an entry whose operand set is a superset of an earlier one must come
// after it. A Catalogue is never modified once built and may be shared
// between goroutines.
type Catalogue struct {
	entries []Entry
}

// NewCatalogue builds the catalogue. It panics if an entry is malformed.
func NewCatalogue() *Catalogue {
	return build(entries())
}

func build(ee []Entry) *Catalogue {
	c := &Catalogue{entries: ee}
	for i, e := range c.entries {
		if err := validate(e); err != nil {
			panic(errors.Wrapf(err, "timing: catalogue entry %d (%s)", i, e.Pattern))
		}
	}
	return c
}

var defaultCatalogue = sync.OnceValue(NewCatalogue)

// Default returns a catalogue built on first use and shared for the life of
// the process.
func Default() *Catalogue {
	return defaultCatalogue()
}

// Len is the number of entries.
func (c *Catalogue) Len() int {
	return len(c.entries)
}

// Entry returns the entry at index i.
func (c *Catalogue) Entry(i int) Entry {
	return c.entries[i]
}

// Entries returns a copy of the entries in priority order.
func (c *Catalogue) Entries() []Entry {
	e := make([]Entry, len(c.entries))
	copy(e, c.entries)
	return e
}

// Match is a successful lookup.
type Match struct {
	Index int
	Entry Entry
}

// Lookup finds the first entry matching the instruction.
func (c *Catalogue) Lookup(instruction string) (Match, bool) {
	ins, ok := split(instruction)
	if !ok {
		return Match{}, false
	}
	for i, e := range c.entries {
		if e.Pattern.match(ins) {
			return Match{Index: i, Entry: e}, true
		}
	}
	return Match{}, false
}

func validate(e Entry) error {
	if len(e.Pattern.Mnemonics) == 0 {
		return errors.New("no mnemonic")
	}
	for _, m := range e.Pattern.Mnemonics {
		if m == "" {
			return errors.New("empty mnemonic")
		}
	}
	if len(e.Pattern.Operands) > 2 {
		return errors.Errorf("%d operands", len(e.Pattern.Operands))
	}
	for i, s := range e.Pattern.Operands {
		if s.Kind.needsNames() && len(s.Names) == 0 {
			return errors.Errorf("operand %d: %s shape without names", i, s.Kind)
		}
	}
	if e.Timing.Primary() <= 0 {
		return errors.Errorf("timing %s", e.Timing)
	}
	return nil
}

func entries() []Entry {
	group := func(name string, ee ...Entry) []Entry {
		for i := range ee {
			ee[i].Group = name
		}
		return ee
	}
	e := func(p Pattern, t Timing) Entry {
		return Entry{Pattern: p, Timing: t}
	}

	var all []Entry

	all = append(all, group("exchange",
		e(P("EXX"), Simple(1)),
		e(P("EX", Reg("HL"), Reg("DE")), Simple(1)),
		e(P("EX", Reg("AF"), Prime("AF")), Simple(1)),
	)...)

	// index registers before the generic register forms
	all = append(all, group("index",
		e(P("ADD|ADC|AND|CP|OR|SBC|SUB|XOR", MemIndex), Simple(5)),
		e(P("INC|DEC", MemIndex), Simple(6)),
		e(P("INC|DEC", Reg8Index), Simple(2)),
	)...)

	// HL and SP before the generic register pair, which also contains HL
	all = append(all, group("ld16",
		e(P("LD", Reg("A"), MemReg16), Simple(2)),
		e(P("LD", Reg("HL"), Mem), Simple(5)),
		e(P("LD", Reg("SP"), Mem), Simple(6)),
		e(P("LD", Reg16, Mem), Simple(6)),
		e(P("LD", Reg16, Val), Simple(3)),
		e(P("LD", MemReg("HL"), Val), Simple(3)),
		e(P("LD", Mem, Reg("HL")), Simple(5)),
		e(P("LD", Mem, Reg("SP")), Simple(6)),
		e(P("LD", Mem, Reg16), Simple(6)),
	)...)

	all = append(all, group("ld8",
		e(P("LD", Reg8, Reg8), Simple(1)),
		e(P("LD", Reg("A"), Mem), Simple(4)),
		e(P("LD", Mem, Reg("A")), Simple(4)),
		e(P("LD", Reg8, Val), Simple(2)),
	)...)

	all = append(all, group("incdec",
		e(P("INC|DEC", Reg16), Simple(2)),
		e(P("INC|DEC", Reg8), Simple(1)),
	)...)

	all = append(all, group("alu",
		e(P("ADD", MemReg("HL")), Simple(2)),
		e(P("AND|OR|XOR", Reg8), Simple(1)),
		e(P("RRA|RRCA|RLA|RLCA"), Simple(1)),
	)...)

	all = append(all, group("shift",
		e(P("SLA|SRA|SRL|SLL", Reg8), Simple(2)),
	)...)

	all = append(all, group("port",
		e(P("OUT", Port, Reg8), Simple(4)),
	)...)

	all = append(all, group("jump",
		e(P("JP", Val), Simple(3)),
		e(P("JP", Cond, Val), Simple(3)),
		e(P("JP", MemReg("HL")), Simple(1)),
		e(P("JP", MemReg("IX")), Simple(2)),
		e(P("JP", MemReg("IY")), Simple(2)),
		e(P("JR", Cond, Val), Dual(3, 2)),
		e(P("JR", Val), Simple(3)),
	)...)

	all = append(all, group("call",
		e(P("RET"), Simple(3)),
	)...)

	return all
}
