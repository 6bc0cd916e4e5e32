package dudect

import (
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"
)

// CropPolicy discards measurements above a percentile of their batch.  The value is the percentile
// in (0, 100].
type CropPolicy float64

// NoCrop keeps every measurement
const NoCrop CropPolicy = 100

func (p CropPolicy) String() string {
	if p == NoCrop {
		return "none"
	}
	return "p" + strconv.FormatFloat(float64(p), 'g', 6, 64)
}

// DudectCrops returns n percentiles 100 * (1 - 0.5^(10 * (i+1) / n)) for i in [0, n).  The
// percentiles crowd toward the upper tail, where timing noise lives.
func DudectCrops(n int) []CropPolicy {
	out := make([]CropPolicy, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, CropPolicy(100*(1-math.Pow(0.5, 10*float64(i+1)/float64(n)))))
	}
	return out
}

// thresholds returns the cut off duration of every policy for one batch.  A measurement survives
// policy i when its duration is at most thresholds[i].
func thresholds(batch []Measurement, policies []CropPolicy) []float64 {
	out := make([]float64, len(policies))
	var sample *stats.Sample
	for i, p := range policies {
		if p == NoCrop {
			out[i] = math.Inf(1)
			continue
		}
		if sample == nil {
			xs := make([]float64, len(batch))
			for j, m := range batch {
				xs[j] = m.Duration
			}
			sample = (&stats.Sample{Xs: xs}).Sort()
		}
		out[i] = sample.Quantile(float64(p) / 100)
	}
	return out
}

func cropNames(policies []CropPolicy) []string {
	out := make([]string, len(policies))
	for i, p := range policies {
		out[i] = p.String()
	}
	return out
}
