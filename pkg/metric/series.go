package metric

import (
	"fmt"
	"math"
)

// Series is a fixed capacity ring buffer of observations, such as the maximum |t| after each round
type Series struct {
	count  int
	values []float64
}

// Values returns a copy of the retained observations in temporal order from oldest to most recent
func (s *Series) Values() []float64 {
	if s.count < len(s.values) {
		out := make([]float64, s.count)
		copy(out, s.values[:s.count])
		return out
	}
	out := make([]float64, 0, len(s.values))
	oldest := s.nextIndex()
	return append(append(out, s.values[oldest:]...), s.values[0:oldest]...)
}

// Record adds a new observation to the series
func (s *Series) Record(p float64) {
	s.values[s.nextIndex()] = p
	s.count++
}

// Max returns the largest retained observation, or NaN for an empty series
func (s *Series) Max() float64 {
	vals := s.Values()
	if len(vals) == 0 {
		return math.NaN()
	}
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// nextIndex returns the index of the oldest observation in the series to be overwritten by new data
func (s *Series) nextIndex() int {
	return s.count % len(s.values)
}

// Reset discards all observations
func (s *Series) Reset() {
	s.count = 0
	for i := range s.values {
		s.values[i] = 0
	}
}

// NewSeries creates a new series with a capacity of cap
func NewSeries(cap int) (*Series, error) {
	if cap <= 0 {
		return nil, fmt.Errorf("series must be initialized with a capacity >= 1")
	}
	return &Series{values: make([]float64, cap)}, nil
}
