package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "dudect"
	subsystem = "session"
)

// Collector exports session progress as Prometheus metrics.  All metrics are labelled by session id.
type Collector struct {
	// MaxAbsT is the current max |t| over all defined cells.
	MaxAbsT *prometheus.GaugeVec
	// Rounds counts completed rounds.
	Rounds *prometheus.CounterVec
	// Samples is the number of samples in the winning cell.
	Samples *prometheus.GaugeVec
	// Finished counts sessions reaching a terminal state, labelled by that state.
	Finished *prometheus.CounterVec
}

// NewCollector registers the session metrics with reg.  Use prometheus.DefaultRegisterer to expose them
// through promhttp.Handler.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		MaxAbsT: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "max_abs_t",
			Help:      "Largest absolute Welch t statistic over all cells",
		}, []string{"session"}),
		Rounds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rounds_total",
			Help:      "Completed measurement rounds",
		}, []string{"session"}),
		Samples: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "samples",
			Help:      "Samples absorbed by the cell holding the largest t",
		}, []string{"session"}),
		Finished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "finished_total",
			Help:      "Sessions reaching a terminal state",
		}, []string{"state"}),
	}
}

// ObserveRound records the statistics after one completed round
func (c *Collector) ObserveRound(session string, maxAbsT float64, samples int) {
	c.MaxAbsT.WithLabelValues(session).Set(maxAbsT)
	c.Samples.WithLabelValues(session).Set(float64(samples))
	c.Rounds.WithLabelValues(session).Inc()
}

// ObserveFinished records a session reaching a terminal state
func (c *Collector) ObserveFinished(state string) {
	c.Finished.WithLabelValues(state).Inc()
}
