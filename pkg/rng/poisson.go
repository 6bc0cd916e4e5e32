package rng

import "math"

var _ RNG = &PoissonRNG{}

// PoissonRNG generates Poisson distributed numbers using Knuth's algorithm.  It models timers
// with a coarse tick count.
type PoissonRNG struct {
	lambda float64
	s      *Source
}

func (r *PoissonRNG) Rand() float64 {
	// Knuth's algorithm
	L := math.Exp(-r.lambda)
	var k int64
	p := 1.0

	for p > L {
		k++
		p = p * r.s.Float64()
	}
	return float64(k - 1)
}

func NewPoissonRNG(lambda float64, seed int64) *PoissonRNG {
	return &PoissonRNG{
		lambda: lambda,
		s:      NewSource(seed),
	}
}
