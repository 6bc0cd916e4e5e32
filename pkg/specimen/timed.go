package specimen

import (
	"errors"
	"time"
)

// Clock is a monotonic tick source
type Clock interface {
	Now() int64
}

type monotonic struct {
	start time.Time
}

// Now returns nanoseconds since the clock was created from the monotonic clock reading
func (m monotonic) Now() int64 {
	return int64(time.Since(m.start))
}

// Monotonic returns a nanosecond clock that is unaffected by wall clock changes
func Monotonic() Clock {
	return monotonic{start: time.Now()}
}

// Timed measures a function with a clock
type Timed struct {
	base
	fn    func([]byte)
	clock Clock
}

// NewTimed returns a specimen timing fn on blocks of n bytes with the monotonic clock
func NewTimed(n int, fn func([]byte), opts ...Option) (*Timed, error) {
	if fn == nil {
		return nil, errors.New("function under test must not be nil")
	}
	b, err := newBase(n, opts)
	if err != nil {
		return nil, err
	}
	return &Timed{base: b, fn: fn, clock: Monotonic()}, nil
}

// WithClock replaces the clock of a timed specimen
func (t *Timed) WithClock(c Clock) *Timed {
	t.clock = c
	return t
}

// Measure returns the number of clock ticks taken by one call
func (t *Timed) Measure(input []byte) (float64, error) {
	start := t.clock.Now()
	t.fn(input)
	return float64(t.clock.Now() - start), nil
}
