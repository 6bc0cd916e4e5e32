package rng

import "math"

var _ RNG = &LogNormalRNG{}

// LogNormalRNG generates Log Normal random numbers.  Mean and stdev are the parameters of the
// underlying normal distribution.
type LogNormalRNG struct {
	mean  float64
	stdev float64
	s     *Source
}

func (r *LogNormalRNG) Rand() float64 {
	return math.Exp(r.s.NormFloat64()*r.stdev + r.mean)
}

func NewLogNormalRNG(mean float64, stdev float64, seed int64) *LogNormalRNG {
	return &LogNormalRNG{
		mean:  mean,
		stdev: stdev,
		s:     NewSource(seed),
	}
}
