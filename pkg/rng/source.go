package rng

import (
	"math/rand"
	"time"
)

// Source is a seeded pseudo random source.  It is not safe for concurrent use and is never
// suitable for anything secret.
type Source struct {
	seed int64
	r    *rand.Rand
}

// NewSource returns a source seeded with seed.  A zero seed is replaced by one derived from the
// wall clock; Seed reports the value actually used.
func NewSource(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		seed: seed,
		r:    rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the source was created with
func (s *Source) Seed() int64 {
	return s.seed
}

// Shuffle randomizes the order of n elements with Fisher-Yates
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

// Fill overwrites b with random bytes
func (s *Source) Fill(b []byte) {
	for i := range b {
		b[i] = byte(s.r.Intn(256))
	}
}

// Float64 returns a uniform value in [0, 1)
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// NormFloat64 returns a standard normal value
func (s *Source) NormFloat64() float64 {
	return s.r.NormFloat64()
}
