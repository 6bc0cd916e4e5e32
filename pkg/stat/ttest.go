package stat

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

var (
	// ErrUndefined is wrapped by every reason a t statistic cannot be computed.  It is a normal
	// condition early in a session, never a failure.
	ErrUndefined = errors.New("statistic undefined")

	ErrInsufficientSamples = fmt.Errorf("%w: each class needs at least two samples", ErrUndefined)
	ErrZeroVariance        = fmt.Errorf("%w: standard error is zero", ErrUndefined)

	// ErrNonFiniteStatistic is returned once a cell's moments overflow, which happens for very high
	// orders
	ErrNonFiniteStatistic = fmt.Errorf("%w: t is not finite", ErrUndefined)
)

// WelchT returns Welch's t statistic for the difference in means of fixed and random.  Swapping the
// arguments negates the result.
func WelchT(fixed, random Accumulator) (float64, error) {
	if fixed.n < 2 || random.n < 2 {
		return 0, ErrInsufficientSamples
	}
	den := math.Sqrt(fixed.Variance()/fixed.Weight() + random.Variance()/random.Weight())
	switch {
	case math.IsNaN(den) || math.IsInf(den, 0):
		return 0, ErrNonFiniteStatistic
	case den == 0:
		return 0, ErrZeroVariance
	}
	t := (fixed.mean - random.mean) / den
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, ErrNonFiniteStatistic
	}
	return t, nil
}

// PValue returns the two sided p-value of Welch's test.  It is reported alongside t for context
// and plays no part in deciding whether a session has converged.
func PValue(fixed, random Accumulator) (float64, error) {
	if _, err := WelchT(fixed, random); err != nil {
		return math.NaN(), err
	}
	res, err := stats.TwoSampleWelchTTest(fixed, random, stats.LocationDiffers)
	if err != nil {
		return math.NaN(), fmt.Errorf("%w: %v", ErrUndefined, err)
	}
	return res.P, nil
}
