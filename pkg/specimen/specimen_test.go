package specimen

import (
	"testing"

	"github.com/BTBurke/dudect/pkg/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	now  int64
	step int64
}

func (c *stepClock) Now() int64 {
	c.now += c.step
	return c.now
}

func TestTimed(t *testing.T) {
	var seen []byte
	s, err := NewTimed(4, func(b []byte) { seen = b }, WithFixed([]byte{1, 2, 3, 4}), WithSeed(9))
	require.NoError(t, err)
	s.WithClock(&stepClock{step: 7})

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []byte{1, 2, 3, 4}, s.FixedInput())
	assert.Len(t, s.RandomInput(), 4)

	d, err := s.Measure(s.FixedInput())
	require.NoError(t, err)
	assert.Equal(t, 7.0, d)
	assert.Equal(t, []byte{1, 2, 3, 4}, seen)
}

func TestTimedMonotonic(t *testing.T) {
	s, err := NewTimed(8, ConstantTimeCompare(make([]byte, 8)))
	require.NoError(t, err)
	d, err := s.Measure(s.RandomInput())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 0.0)
}

func TestNewErrors(t *testing.T) {
	tt := []struct {
		name string
		new  func() error
	}{
		{name: "zero length", new: func() error { _, err := NewTimed(0, SleepInput); return err }},
		{name: "nil func", new: func() error { _, err := NewTimed(4, nil); return err }},
		{name: "fixed length", new: func() error { _, err := NewTimed(4, SleepInput, WithFixed([]byte{1})); return err }},
		{name: "nil distribution", new: func() error { _, err := NewSimulated(4, nil); return err }},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.new())
		})
	}
}

func TestSimulated(t *testing.T) {
	s, err := NewSimulated(8, rng.NewNormalRNG(100, 0, 1), WithSeed(3))
	require.NoError(t, err)
	s.Shift(25)

	d, err := s.Measure(s.FixedInput())
	require.NoError(t, err)
	assert.Equal(t, 100.0, d)

	random := s.RandomInput()
	d, err = s.Measure(random)
	require.NoError(t, err)
	assert.Equal(t, 125.0, d)

	neg, err := NewSimulated(8, rng.NewNormalRNG(-5, 0, 1))
	require.NoError(t, err)
	d, err = neg.Measure(neg.FixedInput())
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestSimulatedFault(t *testing.T) {
	s, err := NewSimulated(8, rng.NewNormalRNG(100, 1, 1))
	require.NoError(t, err)
	s.FailAfter(2)
	for i := 0; i < 2; i++ {
		_, err := s.Measure(s.FixedInput())
		require.NoError(t, err)
	}
	_, err = s.Measure(s.FixedInput())
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 3, s.Calls())
}

func TestSimulatedReproducible(t *testing.T) {
	a, _ := NewSimulated(16, rng.NewNormalRNG(0, 1, 5), WithSeed(5))
	b, _ := NewSimulated(16, rng.NewNormalRNG(0, 1, 5), WithSeed(5))
	assert.Equal(t, a.RandomInput(), b.RandomInput())
}

func TestCompare(t *testing.T) {
	secret := []byte{1, 2, 3}
	EarlyExitCompare(secret)([]byte{1, 2, 3})
	assert.Equal(t, 1, sink)
	EarlyExitCompare(secret)([]byte{1, 9, 3})
	assert.Equal(t, 0, sink)
	ConstantTimeCompare(secret)([]byte{1, 2, 3})
	assert.Equal(t, 1, sink)
	ConstantTimeCompare(secret)([]byte{0, 2, 3})
	assert.Equal(t, 0, sink)
}
