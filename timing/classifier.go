// classifier.go - Instruction text to timing

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

package timing

// Reporter receives the instructions no catalogue entry matched.
type Reporter interface {
	Unclassified(instruction string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(instruction string)

// Unclassified implements the Reporter interface.
func (f ReporterFunc) Unclassified(instruction string) {
	f(instruction)
}

// Classifier maps a cleaned instruction to its Timing.
type Classifier struct {
	cat    *Catalogue
	report Reporter
}

// NewClassifier returns a classifier over cat. A nil Reporter discards
// diagnostics.
func NewClassifier(cat *Catalogue, report Reporter) *Classifier {
	return &Classifier{cat: cat, report: report}
}

// Classify returns the Timing of the first entry matching the instruction.
// An unmatched instruction is passed to the Reporter and scores the zero
// Timing.
func (c *Classifier) Classify(instruction string) Timing {
	m, ok := c.cat.Lookup(instruction)
	if !ok {
		if c.report != nil {
			c.report.Unclassified(instruction)
		}
		return Timing{}
	}
	return m.Entry.Timing
}

// Lookup is Classify without the Reporter, keeping the difference between an
// unclassified instruction and a classified one.
func (c *Classifier) Lookup(instruction string) (Match, bool) {
	return c.cat.Lookup(instruction)
}

// Classify uses the Default catalogue and reports nothing.
func Classify(instruction string) Timing {
	return NewClassifier(Default(), nil).Classify(instruction)
}
