// timing.go - Cycle cost of a single Z80 instruction, in nops

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

package timing

import "strconv"

// Timing is the cost of one instruction occurrence. The primary value is the
// common case. Instructions whose duration depends on a condition (JR cc)
// also carry an alternate value for the other outcome.
//
// The zero Timing means "unknown", never "free".
type Timing struct {
	primary   int
	alternate int
	dual      bool
}

// Simple returns a Timing with a single duration.
func Simple(nops int) Timing {
	return Timing{primary: nops}
}

// Dual returns a Timing with a primary and an alternate duration.
func Dual(primary, alternate int) Timing {
	return Timing{primary: primary, alternate: alternate, dual: true}
}

// Primary is the duration used when summing timings.
func (t Timing) Primary() int {
	return t.primary
}

// Alternate returns the alternate duration, if there is one.
func (t Timing) Alternate() (int, bool) {
	return t.alternate, t.dual
}

// HasSimpleTiming is true when there is no alternate duration.
func (t Timing) HasSimpleTiming() bool {
	return !t.dual
}

// IsZero is true for the value returned for unclassified instructions.
func (t Timing) IsZero() bool {
	return t == Timing{}
}

// Equal compares both the primary and the alternate durations.
func (t Timing) Equal(o Timing) bool {
	return t == o
}

// String renders "3" or, with an alternate, "3/2".
func (t Timing) String() string {
	if !t.dual {
		return strconv.Itoa(t.primary)
	}
	return strconv.Itoa(t.primary) + "/" + strconv.Itoa(t.alternate)
}
