// Copyright (C) 2017 ScyllaDB

package repair

import (
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/retry"
	"go.uber.org/multierr"
)

// BackoffConfig specifies how long job waits after failed steps.
type BackoffConfig struct {
	InitialInterval     time.Duration `yaml:"initial_interval"`
	MaxInterval         time.Duration `yaml:"max_interval"`
	Multiplier          float64       `yaml:"multiplier"`
	RandomizationFactor float64       `yaml:"randomization_factor"`
}

func (c BackoffConfig) newBackoff() retry.Backoff {
	return retry.NewExponentialBackoff(c.InitialInterval, 0, c.MaxInterval, c.Multiplier, c.RandomizationFactor)
}

// Config specifies the repair scheduler configuration.
type Config struct {
	// GracefulStopTimeout is the max time a closing job waits for
	// its step to return.
	GracefulStopTimeout time.Duration `yaml:"graceful_stop_timeout"`
	// FaultTimeout bounds a single fault report.
	FaultTimeout time.Duration `yaml:"fault_timeout"`
	// StateTimeout bounds reading of repair state.
	StateTimeout time.Duration `yaml:"state_timeout"`
	// StateFailureThreshold is the number of consecutive state read failures
	// after which a fault is reported.
	StateFailureThreshold int `yaml:"state_failure_threshold"`
	// StepTimeout bounds a single repair step, 0 means no timeout.
	StepTimeout time.Duration `yaml:"step_timeout"`
	Backoff     BackoffConfig `yaml:"backoff"`
	// Default is the configuration of tables without overrides.
	Default Configuration `yaml:"default"`
}

// DefaultConfig returns a Config initialized with default values.
func DefaultConfig() Config {
	return Config{
		GracefulStopTimeout:   30 * time.Second,
		FaultTimeout:          5 * time.Second,
		StateTimeout:          30 * time.Second,
		StateFailureThreshold: 3,
		StepTimeout:           6 * time.Hour,
		Backoff: BackoffConfig{
			InitialInterval:     time.Minute,
			MaxInterval:         time.Hour,
			Multiplier:          2,
			RandomizationFactor: 0.2,
		},
		Default: DefaultConfiguration(),
	}
}

// Validate checks if all the fields are properly set.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}

	var err error
	if c.GracefulStopTimeout <= 0 {
		err = multierr.Append(err, errors.New("invalid graceful_stop_timeout, must be > 0"))
	}
	if c.FaultTimeout <= 0 {
		err = multierr.Append(err, errors.New("invalid fault_timeout, must be > 0"))
	}
	if c.StateTimeout <= 0 {
		err = multierr.Append(err, errors.New("invalid state_timeout, must be > 0"))
	}
	if c.StateFailureThreshold < 1 {
		err = multierr.Append(err, errors.New("invalid state_failure_threshold, must be >= 1"))
	}
	if c.StepTimeout < 0 {
		err = multierr.Append(err, errors.New("invalid step_timeout, must be >= 0"))
	}
	if c.Backoff.InitialInterval <= 0 {
		err = multierr.Append(err, errors.New("invalid backoff.initial_interval, must be > 0"))
	}
	if c.Backoff.MaxInterval < c.Backoff.InitialInterval {
		err = multierr.Append(err, errors.New("invalid backoff.max_interval, must be >= initial_interval"))
	}
	if c.Backoff.Multiplier < 1 {
		err = multierr.Append(err, errors.New("invalid backoff.multiplier, must be >= 1"))
	}
	if c.Backoff.RandomizationFactor < 0 || c.Backoff.RandomizationFactor >= 1 {
		err = multierr.Append(err, errors.New("invalid backoff.randomization_factor, must be in [0, 1)"))
	}
	if dErr := c.Default.Validate(); dErr != nil {
		err = multierr.Append(err, errors.Wrap(dErr, "default"))
	}
	return err
}
