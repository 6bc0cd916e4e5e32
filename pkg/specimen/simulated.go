package specimen

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/BTBurke/dudect/pkg/rng"
)

// ErrInjected is returned by a simulated specimen configured to fail
var ErrInjected = errors.New("injected measurement failure")

// Simulated draws durations from a distribution without running anything.  Any input that differs
// from the fixed block takes Shift extra units, which models a leaking routine.  Durations never go
// below zero.
type Simulated struct {
	base
	dist       rng.RNG
	shift      float64
	faultAfter int
	calls      int
}

// NewSimulated returns a simulator over blocks of n bytes drawing durations from dist
func NewSimulated(n int, dist rng.RNG, opts ...Option) (*Simulated, error) {
	if dist == nil {
		return nil, errors.New("distribution must not be nil")
	}
	b, err := newBase(n, opts)
	if err != nil {
		return nil, err
	}
	return &Simulated{base: b, dist: dist}, nil
}

// Shift adds delta to the duration of every non-fixed input
func (s *Simulated) Shift(delta float64) *Simulated {
	s.shift = delta
	return s
}

// FailAfter makes every call after the first n calls return ErrInjected
func (s *Simulated) FailAfter(n int) *Simulated {
	s.faultAfter = n
	return s
}

// Calls returns the number of measurements taken
func (s *Simulated) Calls() int {
	return s.calls
}

func (s *Simulated) Measure(input []byte) (float64, error) {
	s.calls++
	if s.faultAfter > 0 && s.calls > s.faultAfter {
		return 0, fmt.Errorf("call %d: %w", s.calls, ErrInjected)
	}
	d := s.dist.Rand()
	if !bytes.Equal(input, s.fixed) {
		d += s.shift
	}
	if d < 0 {
		d = 0
	}
	return d, nil
}
