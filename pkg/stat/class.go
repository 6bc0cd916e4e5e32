// Package stat is the online statistics engine: Welford accumulators arranged in a grid of
// (crop policy, moment order, class) cells, compared with Welch's t-test.
package stat

// Class labels a measurement by the kind of input that produced it
type Class int

const (
	Fixed Class = iota
	Random
)

func (c Class) String() string {
	switch c {
	case Fixed:
		return "fixed"
	case Random:
		return "random"
	default:
		return "unknown"
	}
}

// Swap returns the other class
func (c Class) Swap() Class {
	if c == Fixed {
		return Random
	}
	return Fixed
}
