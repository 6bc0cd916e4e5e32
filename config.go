package dudect

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// Config holds every setting of a session.  Use DefaultConfig for the documented defaults and
// ConfigOption functions to change them.
type Config struct {
	// BlockLen is the length N of every input block.  Zero takes the length from the specimen.
	BlockLen int `validate:"gte=0"`
	// MaxRounds is the measurement budget.  A session that has not converged after MaxRounds
	// rounds is exhausted.
	MaxRounds int `validate:"gt=0"`
	// BatchSize is the number of measurements per round, half of each class.
	BatchSize int `validate:"gt=0,even"`
	// Crops are the outlier crop policies, one grid row each.
	Crops []CropPolicy `validate:"required,min=1,unique,dive,gt=0,lte=100"`
	// Orders are the moment orders tested under every crop policy.
	Orders []int `validate:"required,min=1,unique,dive,gt=0"`
	// Threshold is the |t| a cell must strictly exceed for the session to converge.
	Threshold float64 `validate:"gt=0"`
	// Overwhelming is the |t| above which leakage is reported as definite rather than probable.
	Overwhelming float64 `validate:"gtfield=Threshold"`
	// Warmup rounds are measured and discarded before any statistics are kept.
	Warmup int `validate:"gte=0"`
	// Discard is the number of measurements at the start of every batch left out of the
	// statistics, absorbing cache and branch predictor warm-up inside a batch.  dudect uses 10.
	Discard int `validate:"gte=0,ltfield=BatchSize"`
	// MinSamples is the number of samples the winning cell needs before convergence is considered.
	MinSamples int `validate:"gte=0"`
	// Seed seeds the class schedule.  Zero derives a seed from the clock.
	Seed int64
	// History is the number of per-round max |t| values retained.
	History int `validate:"gt=0"`

	logger    *slog.Logger
	observers []Observer
	reporter  ErrorReporter
}

// ConfigOption changes one setting of the configuration
type ConfigOption func(c *Config) error

const (
	DefaultBatchSize    = 500
	DefaultMaxRounds    = 1000
	DefaultThreshold    = 4.5
	DefaultOverwhelming = 500
	DefaultHistory      = 100
	// DefaultCropLadder is the number of percentile crops added to NoCrop by default
	DefaultCropLadder = 10
)

// DefaultConfig returns the default configuration: batches of 500, at most 1000 rounds, NoCrop plus a
// ten step percentile ladder, first and second order tests, and a 4.5 threshold.
func DefaultConfig() Config {
	return Config{
		MaxRounds:    DefaultMaxRounds,
		BatchSize:    DefaultBatchSize,
		Crops:        append([]CropPolicy{NoCrop}, DudectCrops(DefaultCropLadder)...),
		Orders:       []int{1, 2},
		Threshold:    DefaultThreshold,
		Overwhelming: DefaultOverwhelming,
		History:      DefaultHistory,
		logger:       slog.New(slog.DiscardHandler),
		reporter:     noopReporter{},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}); err != nil {
		panic(err)
	}
	return v
}

// newConfig applies options over the defaults and validates the result.  All problems are reported
// together in a ConfigurationError.
func newConfig(options ...ConfigOption) (Config, error) {
	c := DefaultConfig()

	var errs []error
	for _, option := range options {
		if err := option(&c); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, c.validate()...)
	if len(errs) > 0 {
		return c, &ConfigurationError{Errs: errs}
	}
	return c, nil
}

// ResolveConfig applies options over the defaults and validates the result without building a
// session.  Use it to read settings, such as the block length, that a specimen has to be built with.
func ResolveConfig(options ...ConfigOption) (Config, error) {
	return newConfig(options...)
}

func (c Config) validate() []error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError(fe))
	}
	return out
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "even":
		return fmt.Errorf("%s must be even, got %v", fe.Field(), fe.Value())
	case "required", "min":
		return fmt.Errorf("%s must not be empty", fe.Field())
	case "unique":
		return fmt.Errorf("%s must not contain duplicates", fe.Field())
	case "gtfield":
		return fmt.Errorf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "ltfield":
		return fmt.Errorf("%s must be less than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s must be %s %s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
}

func BlockLen(n int) ConfigOption {
	return func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("block length must be positive, got %d", n)
		}
		c.BlockLen = n
		return nil
	}
}

func MaxRounds(n int) ConfigOption {
	return func(c *Config) error {
		c.MaxRounds = n
		return nil
	}
}

func BatchSize(n int) ConfigOption {
	return func(c *Config) error {
		c.BatchSize = n
		return nil
	}
}

// Crops replaces the crop policies
func Crops(crops ...CropPolicy) ConfigOption {
	return func(c *Config) error {
		c.Crops = append([]CropPolicy{}, crops...)
		return nil
	}
}

// Orders replaces the moment orders
func Orders(orders ...int) ConfigOption {
	return func(c *Config) error {
		c.Orders = append([]int{}, orders...)
		return nil
	}
}

func Threshold(t float64) ConfigOption {
	return func(c *Config) error {
		c.Threshold = t
		return nil
	}
}

func Overwhelming(t float64) ConfigOption {
	return func(c *Config) error {
		c.Overwhelming = t
		return nil
	}
}

func Warmup(n int) ConfigOption {
	return func(c *Config) error {
		c.Warmup = n
		return nil
	}
}

func Discard(n int) ConfigOption {
	return func(c *Config) error {
		c.Discard = n
		return nil
	}
}

func MinSamples(n int) ConfigOption {
	return func(c *Config) error {
		c.MinSamples = n
		return nil
	}
}

func Seed(seed int64) ConfigOption {
	return func(c *Config) error {
		c.Seed = seed
		return nil
	}
}

func History(n int) ConfigOption {
	return func(c *Config) error {
		c.History = n
		return nil
	}
}

// WithLogger sets the structured logger.  By default nothing is logged.
func WithLogger(l *slog.Logger) ConfigOption {
	return func(c *Config) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = l
		return nil
	}
}

// WithObserver adds a function called after every round and once more on reaching a terminal state
func WithObserver(o Observer) ConfigOption {
	return func(c *Config) error {
		if o == nil {
			return errors.New("observer must not be nil")
		}
		c.observers = append(c.observers, o)
		return nil
	}
}

// WithErrorReporter sends the cause of aborted sessions to r
func WithErrorReporter(r ErrorReporter) ConfigOption {
	return func(c *Config) error {
		if r == nil {
			return errors.New("error reporter must not be nil")
		}
		c.reporter = r
		return nil
	}
}
