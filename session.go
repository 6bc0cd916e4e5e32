// Package dudect detects timing leakage in a routine by comparing the durations it takes on a fixed
// input against random inputs with Welch's t-test, in the manner of dudect.  A session can only ever
// report that no leakage was detected within its measurement budget, never that the routine runs in
// constant time.
package dudect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/BTBurke/dudect/pkg/fsm"
	"github.com/BTBurke/dudect/pkg/metric"
	"github.com/BTBurke/dudect/pkg/stat"
	"github.com/google/uuid"
)

// Observer is called synchronously after every round and once more when a session ends.  No round
// runs while an observer is executing.
type Observer func(v Verdict)

// Session drives one experiment on one specimen.  It owns its statistics exclusively and is not safe
// for concurrent use; run independent sessions in parallel instead.
type Session struct {
	id         string
	cfg        Config
	specimen   Specimen
	machine    *fsm.Machine
	classifier *classifier
	grid       *stat.Grid
	history    *metric.Series
	crops      []string
	log        *slog.Logger

	// rounds counts rounds whose measurements were kept, warm counts discarded warm-up rounds
	rounds int
	warm   int
	max    stat.Max
	abort  *SessionAborted
}

// New validates the configuration against the specimen and returns an idle session.  Invalid
// settings are reported together as a *ConfigurationError.
func New(specimen Specimen, options ...ConfigOption) (*Session, error) {
	cfg, err := newConfig(options...)

	var errs []error
	var cerr *ConfigurationError
	if errors.As(err, &cerr) {
		errs = append(errs, cerr.Errs...)
	}
	switch {
	case specimen == nil:
		errs = append(errs, errors.New("specimen must not be nil"))
	case specimen.Len() <= 0:
		errs = append(errs, fmt.Errorf("block length must be positive, got %d", specimen.Len()))
	case cfg.BlockLen == 0:
		cfg.BlockLen = specimen.Len()
	case cfg.BlockLen != specimen.Len():
		errs = append(errs, fmt.Errorf("block length %d does not match specimen length %d", cfg.BlockLen, specimen.Len()))
	}
	if len(errs) > 0 {
		return nil, &ConfigurationError{Errs: errs}
	}

	machine, err := newMachine()
	if err != nil {
		return nil, err
	}
	grid, err := stat.NewGrid(len(cfg.Crops), cfg.Orders)
	if err != nil {
		return nil, &ConfigurationError{Errs: []error{err}}
	}
	history, err := metric.NewSeries(cfg.History)
	if err != nil {
		return nil, &ConfigurationError{Errs: []error{err}}
	}

	s := &Session{
		cfg:      cfg,
		specimen: specimen,
		machine:  machine,
		grid:     grid,
		history:  history,
		crops:    cropNames(cfg.Crops),
	}
	s.init()
	return s, nil
}

func (s *Session) init() {
	s.id = uuid.NewString()
	s.classifier = newClassifier(s.cfg.BatchSize, s.cfg.BlockLen, s.cfg.Seed)
	s.log = s.cfg.logger.With(slog.String("session", s.id))
}

// ID returns the session identifier.  It changes on Reset.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state
func (s *Session) State() fsm.State {
	return s.machine.State()
}

// Config returns the validated configuration
func (s *Session) Config() Config {
	return s.cfg
}

// History returns the max |t| after each retained round, oldest first.  Rounds before any cell was
// defined record zero.
func (s *Session) History() []float64 {
	return s.history.Values()
}

// Metric returns the current t of every defined cell keyed by cell name
func (s *Session) Metric() map[string]float64 {
	return s.grid.Metric(s.crops)
}

// Start moves an idle session to running
func (s *Session) Start() error {
	if err := s.machine.Transition(Running); err != nil {
		return err
	}
	s.log.Info("session started",
		slog.Int64("seed", s.classifier.src.Seed()),
		slog.Int("block_len", s.cfg.BlockLen),
		slog.Int("batch_size", s.cfg.BatchSize),
		slog.Int("max_rounds", s.cfg.MaxRounds),
	)
	return nil
}

// Step runs a single round.  It reports done once the session reaches a terminal state.  ctx is
// only consulted before the round begins; a round in progress is never interrupted.
func (s *Session) Step(ctx context.Context) (done bool, err error) {
	if st := s.machine.State(); st != Running {
		return s.machine.Done(), fmt.Errorf("%w: session is %s", ErrNotRunning, st)
	}
	if err := ctx.Err(); err != nil {
		return true, s.fail(err)
	}

	batch, err := s.classifier.collect(s.specimen, s.warm+s.rounds+1)
	if err != nil {
		return true, s.fail(err)
	}
	if s.warm < s.cfg.Warmup {
		s.warm++
		s.log.Debug("warm-up round discarded", slog.Int("warmup", s.warm))
		return false, nil
	}

	s.absorb(batch)
	s.rounds++
	s.max = s.grid.Max()
	s.history.Record(s.max.AbsT)

	if s.max.Defined {
		s.log.Debug("round complete",
			slog.Int("round", s.rounds),
			slog.Float64("max_t", s.max.T),
			slog.String("cell", stat.CellName(s.max.Cell.ID, s.crops).String()),
		)
	}

	if next := s.decide(); next != Running {
		if err := s.machine.Transition(next); err != nil {
			return true, err
		}
		v := s.Snapshot()
		s.log.Info("session finished",
			slog.String("state", string(next)),
			slog.Int("rounds", s.rounds),
			slog.Float64("max_abs_t", v.MaxAbsT),
			slog.String("severity", v.Severity.String()),
		)
	}
	s.notify()
	return s.machine.Done(), nil
}

// Run starts the session if it is idle and steps it until it reaches a terminal state.  An aborted
// session returns no verdict and a *SessionAborted error.
func (s *Session) Run(ctx context.Context) (*Verdict, error) {
	switch s.machine.State() {
	case Idle:
		if err := s.Start(); err != nil {
			return nil, err
		}
	case Aborted:
		return nil, s.abort
	}

	for !s.machine.Done() {
		if _, err := s.Step(ctx); err != nil {
			return nil, err
		}
	}
	v := s.Snapshot()
	return &v, nil
}

// Snapshot returns the verdict implied by the rounds run so far.  An aborted session reports only
// its id, state, rounds and seed.
func (s *Session) Snapshot() Verdict {
	v := Verdict{
		SessionID: s.id,
		State:     s.machine.State(),
		Rounds:    s.rounds,
		Seed:      s.classifier.src.Seed(),
		PValue:    math.NaN(),
	}
	// an aborted session publishes no statistic
	if !s.max.Defined || v.State == Aborted {
		v.NeededSamples = math.Inf(1)
		return v
	}
	c := s.max.Cell
	v.Defined = true
	v.T = s.max.T
	v.MaxAbsT = s.max.AbsT
	v.Cell = CellRef{Order: c.ID.Order, Crop: s.cfg.Crops[c.ID.Crop]}
	v.Samples = c.Samples()
	v.PeakAbsT = s.history.Max()
	v.Tau, v.NeededSamples = effect(v.MaxAbsT, v.Samples)
	if p, err := stat.PValue(c.Fixed, c.Random); err == nil {
		v.PValue = p
	}
	v.Severity = severity(v.MaxAbsT, true, s.cfg)
	return v
}

// Reset discards all statistics and returns the session to idle under a new id, ready for a new
// experiment with the same configuration
func (s *Session) Reset() {
	s.machine.Reset()
	s.grid.Reset()
	s.history.Reset()
	s.rounds, s.warm = 0, 0
	s.max = stat.Max{}
	s.abort = nil
	s.init()
}

// absorb adds a measured batch to the grid.  Crop thresholds are taken over the whole batch, then
// the first Discard measurements are dropped.
func (s *Session) absorb(batch []Measurement) {
	limits := thresholds(batch, s.cfg.Crops)
	for _, m := range batch[s.cfg.Discard:] {
		for p, limit := range limits {
			if m.Duration <= limit {
				s.grid.Absorb(p, m.Class, m.Duration)
			}
		}
	}
}

// decide checks convergence before exhaustion so a final round that crosses the threshold converges
func (s *Session) decide() fsm.State {
	switch {
	case s.max.Defined && s.max.Cell.Samples() >= s.cfg.MinSamples && s.max.AbsT > s.cfg.Threshold:
		return Converged
	case s.rounds >= s.cfg.MaxRounds:
		return Exhausted
	default:
		return Running
	}
}

func (s *Session) fail(cause error) error {
	s.abort = &SessionAborted{SessionID: s.id, Round: s.warm + s.rounds + 1, Cause: cause}
	if err := s.machine.Transition(Aborted); err != nil {
		return err
	}
	s.log.Warn("session aborted", slog.Int("round", s.abort.Round), slog.Any("error", cause))
	if !errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		s.cfg.reporter.ReportError(s.abort)
	}
	s.notify()
	return s.abort
}

func (s *Session) notify() {
	if len(s.cfg.observers) == 0 {
		return
	}
	v := s.Snapshot()
	for _, o := range s.cfg.observers {
		o(v)
	}
}
