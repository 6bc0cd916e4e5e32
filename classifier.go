package dudect

import (
	"fmt"
	"math"

	"github.com/BTBurke/dudect/pkg/rng"
)

// classifier schedules balanced, shuffled batches and measures them
type classifier struct {
	size   int
	n      int
	src    *rng.Source
	labels []ClassLabel
	inputs [][]byte
}

func newClassifier(size int, n int, seed int64) *classifier {
	return &classifier{
		size:   size,
		n:      n,
		src:    rng.NewSource(seed),
		labels: make([]ClassLabel, size),
		inputs: make([][]byte, size),
	}
}

// schedule returns size/2 fixed and size/2 random labels in random order
func (c *classifier) schedule() []ClassLabel {
	for i := range c.labels {
		c.labels[i] = Fixed
		if i >= c.size/2 {
			c.labels[i] = Random
		}
	}
	c.src.Shuffle(len(c.labels), func(i, j int) {
		c.labels[i], c.labels[j] = c.labels[j], c.labels[i]
	})
	return c.labels
}

// collect measures one batch.  Every input is prepared before the first call so that input
// generation never runs between timed calls.
func (c *classifier) collect(s Specimen, round int) ([]Measurement, error) {
	labels := c.schedule()
	fixed := s.FixedInput()
	for i, l := range labels {
		switch l {
		case Fixed:
			c.inputs[i] = fixed
		default:
			c.inputs[i] = s.RandomInput()
		}
		if len(c.inputs[i]) != c.n {
			return nil, &MeasurementFault{Round: round, Index: i, Err: fmt.Errorf("%w: %d, want %d", ErrBlockLength, len(c.inputs[i]), c.n)}
		}
	}

	batch := make([]Measurement, len(labels))
	for i, l := range labels {
		d, err := s.Measure(c.inputs[i])
		if err != nil {
			return nil, &MeasurementFault{Round: round, Index: i, Err: err}
		}
		batch[i] = Measurement{Duration: d, Class: l, Round: round}
	}

	for i, m := range batch {
		switch {
		case math.IsNaN(m.Duration) || math.IsInf(m.Duration, 0):
			return nil, &MeasurementFault{Round: round, Index: i, Err: ErrNonFinite}
		case m.Duration < 0:
			return nil, &MeasurementFault{Round: round, Index: i, Err: fmt.Errorf("%w: %v", ErrNegative, m.Duration)}
		}
	}
	return batch, nil
}
