package rng

var _ RNG = &NormalRNG{}

// NormalRNG generates normally distributed numbers
type NormalRNG struct {
	mean  float64
	stdev float64
	s     *Source
}

func (r *NormalRNG) Rand() float64 {
	return r.s.NormFloat64()*r.stdev + r.mean
}

func NewNormalRNG(mean float64, stdev float64, seed int64) *NormalRNG {
	return &NormalRNG{
		mean:  mean,
		stdev: stdev,
		s:     NewSource(seed),
	}
}
