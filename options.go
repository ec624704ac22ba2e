package dracve

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/dracve/pkg/corrections"
	"github.com/agentstation/dracve/pkg/errors"
	"github.com/agentstation/dracve/pkg/logging"
	"github.com/agentstation/dracve/pkg/tabular"
)

// options configures an engine.
type options struct {
	corrector corrections.Corrector
	clock     func() time.Time
	delimiter rune
	logger    *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		clock:     time.Now,
		delimiter: tabular.DefaultDelimiter,
		logger:    logging.Default(),
	}
}

// Option is a function that configures an Engine.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns engine options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithCorrector sets the correction collaborator used by
// RequestCorrections. Without one, correction round trips fail with
// ErrNoCorrector.
func WithCorrector(corrector corrections.Corrector) Option {
	return func(o *options) error {
		if corrector == nil {
			return &errors.ValidationError{
				Field:   "corrector",
				Message: "cannot be nil",
			}
		}
		o.corrector = corrector
		return nil
	}
}

// WithClock sets the evaluation-time source used for in-transit
// classification. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		o.clock = clock
		return nil
	}
}

// WithDelimiter sets the field delimiter used when parsing payloads.
func WithDelimiter(delimiter rune) Option {
	return func(o *options) error {
		if delimiter == 0 {
			return &errors.ValidationError{
				Field:   "delimiter",
				Message: "cannot be zero",
			}
		}
		o.delimiter = delimiter
		return nil
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{
				Field:   "logger",
				Message: "cannot be nil",
			}
		}
		o.logger = logger
		return nil
	}
}
