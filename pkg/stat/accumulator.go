package stat

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

var _ stats.TTestSample = Accumulator{}

// Accumulator keeps the running count, mean and sum of squared deviations of a stream of values
// using Welford's method.  The zero value is an empty accumulator.
type Accumulator struct {
	n    int
	mean float64
	m2   float64
}

// Add absorbs one value
func (a *Accumulator) Add(x float64) {
	a.n++
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

// Merge absorbs every value absorbed by b.  The result matches adding b's values one at a time up
// to floating point rounding.
func (a *Accumulator) Merge(b Accumulator) {
	if b.n == 0 {
		return
	}
	if a.n == 0 {
		*a = b
		return
	}
	n := a.n + b.n
	delta := b.mean - a.mean
	a.mean += delta * float64(b.n) / float64(n)
	a.m2 += b.m2 + delta*delta*float64(a.n)*float64(b.n)/float64(n)
	a.n = n
}

// Count returns the number of values absorbed
func (a Accumulator) Count() int {
	return a.n
}

// Weight is Count as a float64
func (a Accumulator) Weight() float64 {
	return float64(a.n)
}

// Mean returns the running mean, zero for an empty accumulator
func (a Accumulator) Mean() float64 {
	return a.mean
}

// Variance returns the unbiased sample variance, or NaN when fewer than two values have been absorbed
func (a Accumulator) Variance() float64 {
	if a.n < 2 {
		return math.NaN()
	}
	return a.m2 / float64(a.n-1)
}
