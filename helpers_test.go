package dudect

import (
	"testing"

	"github.com/BTBurke/dudect/pkg/rng"
	"github.com/BTBurke/dudect/pkg/specimen"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// test helper silences superfluous logging calls from the mock package
type foo struct {
	t *testing.T
}

func (f foo) Logf(format string, args ...interface{}) {
	// makes mock calls to log a no op to prevent a lot of superfluous logging calls
}
func (f foo) Errorf(format string, args ...interface{}) {
	f.t.Errorf(format, args...)
}
func (f foo) FailNow() {
	f.t.FailNow()
}

func silenceT(t *testing.T) mock.TestingT {
	return foo{t}
}

type mockSpecimen struct {
	mock.Mock
}

func newMockSpecimen(t *testing.T, n int) *mockSpecimen {
	m := &mockSpecimen{}
	m.Test(silenceT(t))
	m.On("Len").Return(n).Maybe()
	m.On("FixedInput").Return(make([]byte, n)).Maybe()
	m.On("RandomInput").Return(make([]byte, n)).Maybe()
	return m
}

func (m *mockSpecimen) Len() int {
	return m.Called().Int(0)
}

func (m *mockSpecimen) FixedInput() []byte {
	return m.Called().Get(0).([]byte)
}

func (m *mockSpecimen) RandomInput() []byte {
	return m.Called().Get(0).([]byte)
}

func (m *mockSpecimen) Measure(input []byte) (float64, error) {
	args := m.Called(input)
	return args.Get(0).(float64), args.Error(1)
}

// simulated returns an 8 byte specimen with normal(1000, 10) durations, shifted by shift for random inputs
func simulated(t *testing.T, seed int64, shift float64) *specimen.Simulated {
	s, err := specimen.NewSimulated(8, rng.NewNormalRNG(1000, 10, seed), specimen.WithSeed(seed))
	require.NoError(t, err)
	return s.Shift(shift)
}

// scenario is N=8, batches of 100, at most 50 rounds, orders 1 and 2, no crop and the 50th percentile
func scenario(extra ...ConfigOption) []ConfigOption {
	return append([]ConfigOption{
		BlockLen(8),
		BatchSize(100),
		MaxRounds(50),
		Orders(1, 2),
		Crops(NoCrop, 50),
		Seed(1),
	}, extra...)
}
