package dudect

import (
	"math"

	"github.com/BTBurke/dudect/pkg/fsm"
)

// Severity grades the evidence of leakage carried by the largest |t|
type Severity int

const (
	// SeverityNone means no cell exceeded the threshold
	SeverityNone Severity = iota
	// SeverityProbable means a cell exceeded the threshold
	SeverityProbable
	// SeverityDefinite means a cell exceeded the overwhelming threshold
	SeverityDefinite
)

func (s Severity) String() string {
	switch s {
	case SeverityProbable:
		return "probable"
	case SeverityDefinite:
		return "definite"
	default:
		return "none"
	}
}

// Summary is a one line human reading of the severity
func (s Severity) Summary() string {
	switch s {
	case SeverityProbable:
		return "Probably not constant time."
	case SeverityDefinite:
		return "Definitely not constant time."
	default:
		return "For the moment, maybe constant time."
	}
}

// CellRef names the grid cell holding the largest |t|
type CellRef struct {
	Order int
	Crop  CropPolicy
}

// Verdict is the outcome of a session, or an estimate from the rounds run so far
type Verdict struct {
	SessionID string
	State     fsm.State
	// Defined is false until at least one cell has a defined t statistic
	Defined bool
	// T is the signed t of the winning cell, positive when fixed inputs are slower
	T       float64
	MaxAbsT float64
	// PeakAbsT is the largest max |t| over the retained history, at least MaxAbsT when the history
	// covers every round
	PeakAbsT float64
	Cell     CellRef
	Rounds   int
	// Samples is the number of values absorbed by the winning cell over both classes
	Samples int
	// Tau is MaxAbsT / sqrt(Samples), an effect size independent of the sample count
	Tau float64
	// NeededSamples is roughly how many samples the effect needs to reach |t| = 5
	NeededSamples float64
	// PValue is the two sided Welch p-value of the winning cell, NaN when undefined
	PValue   float64
	Severity Severity
	Seed     int64
}

// Leaky reports whether the session converged on a difference between the classes
func (v Verdict) Leaky() bool {
	return v.State == Converged
}

func severity(absT float64, defined bool, cfg Config) Severity {
	switch {
	case !defined || absT <= cfg.Threshold:
		return SeverityNone
	case absT <= cfg.Overwhelming:
		return SeverityProbable
	default:
		return SeverityDefinite
	}
}

func effect(absT float64, samples int) (tau float64, needed float64) {
	if samples == 0 {
		return 0, math.Inf(1)
	}
	tau = absT / math.Sqrt(float64(samples))
	if tau == 0 {
		return 0, math.Inf(1)
	}
	return tau, (5 / tau) * (5 / tau)
}
