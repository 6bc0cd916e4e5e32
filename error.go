package dudect

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/stvp/rollbar"
)

var (
	// ErrNonFinite is a measurement fault for a duration that is NaN or infinite
	ErrNonFinite = errors.New("duration is not finite")
	// ErrNegative is a measurement fault for a duration below zero
	ErrNegative = errors.New("duration is negative")
	// ErrBlockLength is a measurement fault for an input block whose length differs from the configured length
	ErrBlockLength = errors.New("input block has the wrong length")
	// ErrNotRunning is returned when a round is requested from a session that is not running
	ErrNotRunning = errors.New("session is not running")
)

// ConfigurationError reports every invalid setting found while building a session.  No round is
// ever run with an invalid configuration.
type ConfigurationError struct {
	Errs []error
}

func (e *ConfigurationError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

func (e *ConfigurationError) Unwrap() []error {
	return e.Errs
}

// MeasurementFault is raised when the specimen fails or returns an unusable duration
type MeasurementFault struct {
	Round int
	// Index is the position of the measurement within the batch
	Index int
	Err   error
}

func (e *MeasurementFault) Error() string {
	return fmt.Sprintf("measurement fault in round %d at index %d: %v", e.Round, e.Index, e.Err)
}

func (e *MeasurementFault) Unwrap() error {
	return e.Err
}

// SessionAborted is returned by Run when a session ends without a verdict
type SessionAborted struct {
	SessionID string
	Round     int
	Cause     error
}

func (e *SessionAborted) Error() string {
	return fmt.Sprintf("session %s aborted in round %d: %v", e.SessionID, e.Round, e.Cause)
}

func (e *SessionAborted) Unwrap() error {
	return e.Cause
}

// ErrorReporter sends unexpected errors to an external crash reporting service
type ErrorReporter interface {
	ReportError(err error)
}

type noopReporter struct{}

func (noopReporter) ReportError(err error) {}

// RollbarReporter reports aborted sessions to Rollbar
type RollbarReporter struct{}

var rollbarMu sync.Mutex

// NewRollbarReporter configures the Rollbar client.  The client is process wide, so every reporter
// in a process shares one token and environment; asking for a different pair once one is configured
// is an error.  Nothing is reported unless a reporter is passed to a session with WithErrorReporter.
func NewRollbarReporter(token string, environment string) (RollbarReporter, error) {
	if token == "" {
		return RollbarReporter{}, errors.New("rollbar token must not be empty")
	}
	if environment == "" {
		environment = "production"
	}

	rollbarMu.Lock()
	defer rollbarMu.Unlock()
	if rollbar.Token != "" && (rollbar.Token != token || rollbar.Environment != environment) {
		return RollbarReporter{}, fmt.Errorf("rollbar is already configured for environment %s", rollbar.Environment)
	}
	rollbar.Token = token
	rollbar.Environment = environment
	return RollbarReporter{}, nil
}

// ReportError will send the error to Rollbar in the background
func (RollbarReporter) ReportError(err error) {
	rollbar.Error(rollbar.ERR, err)
}

// Wait blocks until queued reports have been sent
func (RollbarReporter) Wait() {
	rollbar.Wait()
}
