// Copyright (C) 2017 ScyllaDB

package schedule

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Config specifies the schedule manager configuration.
type Config struct {
	// PollInterval specifies how often jobs are asked if they are runnable.
	PollInterval time.Duration `yaml:"poll_interval"`
	// MaxConcurrent is the max number of jobs running at the same time.
	MaxConcurrent int `yaml:"max_concurrent"`
	// PollParallelism is the max number of jobs asked if they are runnable
	// at the same time, 0 means no limit.
	PollParallelism int `yaml:"poll_parallelism"`
}

// DefaultConfig returns a Config initialized with default values.
func DefaultConfig() Config {
	return Config{
		PollInterval:    time.Minute,
		MaxConcurrent:   1,
		PollParallelism: 16,
	}
}

// Validate checks if all the fields are properly set.
func (c Config) Validate() error {
	var err error
	if c.PollInterval <= 0 {
		err = multierr.Append(err, errors.New("invalid poll_interval, must be > 0"))
	}
	if c.MaxConcurrent < 1 {
		err = multierr.Append(err, errors.New("invalid max_concurrent, must be >= 1"))
	}
	if c.PollParallelism < 0 {
		err = multierr.Append(err, errors.New("invalid poll_parallelism, must be >= 0"))
	}
	return err
}
