// Package specimen provides routines to measure: a timer adapter for real functions and a
// deterministic simulator with a configurable leak.
package specimen

import (
	"errors"

	"github.com/BTBurke/dudect/pkg/rng"
)

type base struct {
	n     int
	fixed []byte
	src   *rng.Source
	seed  int64
}

// Option configures a specimen
type Option func(b *base) error

func newBase(n int, opts []Option) (base, error) {
	if n <= 0 {
		return base{}, errors.New("block length must be positive")
	}
	b := base{n: n}
	for _, opt := range opts {
		if err := opt(&b); err != nil {
			return base{}, err
		}
	}
	if b.fixed == nil {
		b.fixed = make([]byte, n)
	}
	if len(b.fixed) != n {
		return base{}, errors.New("fixed block length does not match block length")
	}
	b.src = rng.NewSource(b.seed)
	return b, nil
}

// WithFixed sets the block used for every fixed class measurement.  The default is all zeros.
func WithFixed(block []byte) Option {
	return func(b *base) error {
		b.fixed = append([]byte{}, block...)
		return nil
	}
}

// WithSeed seeds the random input generator
func WithSeed(seed int64) Option {
	return func(b *base) error {
		b.seed = seed
		return nil
	}
}

func (b *base) Len() int {
	return b.n
}

// FixedInput returns the fixed block.  Callers must not modify it.
func (b *base) FixedInput() []byte {
	return b.fixed
}

func (b *base) RandomInput() []byte {
	out := make([]byte, b.n)
	b.src.Fill(out)
	return out
}
