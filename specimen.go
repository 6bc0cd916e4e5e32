package dudect

import "github.com/BTBurke/dudect/pkg/stat"

// ClassLabel tags a measurement as produced by the fixed or a random input
type ClassLabel = stat.Class

const (
	Fixed  = stat.Fixed
	Random = stat.Random
)

// Specimen is the routine under test together with its timer.  It never learns which class an
// input belongs to.
type Specimen interface {
	// Len is the length of every input block
	Len() int
	// FixedInput returns the block used for every fixed class measurement
	FixedInput() []byte
	// RandomInput returns a freshly generated block
	RandomInput() []byte
	// Measure runs the routine once on input and returns its duration in the timer's units
	Measure(input []byte) (float64, error)
}

// Measurement is one timed call of the specimen
type Measurement struct {
	Duration float64
	Class    ClassLabel
	Round    int
}
