// Copyright (C) 2017 ScyllaDB

package repair

import (
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/inexlist/dcfilter"
	"go.uber.org/multierr"
)

// Configuration is a repair policy of a table.
// Configurations are values, use Equal to compare them.
type Configuration struct {
	// Interval is the target time between repairs of every token range.
	Interval time.Duration `json:"interval" yaml:"interval"`
	// WarningMultiple specifies by how many intervals repair may be late
	// before a warning is raised.
	WarningMultiple float64 `json:"warning_multiple" yaml:"warning_multiple"`
	// ErrorMultiple specifies by how many intervals repair may be late
	// before an error is raised.
	ErrorMultiple float64 `json:"error_multiple" yaml:"error_multiple"`
	// Parallelism is the max number of token ranges repaired in one step.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
	// UnwindRatio makes job wait UnwindRatio times the duration of a step
	// before starting the next one.
	UnwindRatio float64 `json:"unwind_ratio" yaml:"unwind_ratio"`
	// DC is a list of include/exclude glob patterns of datacenters to repair.
	DC []string `json:"dc" yaml:"dc"`
	// Priority is a weight of the table when competing for execution.
	Priority int `json:"priority" yaml:"priority"`
}

// DefaultConfiguration returns the default repair policy, weekly repair.
func DefaultConfiguration() Configuration {
	return Configuration{
		Interval:        7 * 24 * time.Hour,
		WarningMultiple: 1,
		ErrorMultiple:   2,
		Parallelism:     1,
		UnwindRatio:     0,
		Priority:        1,
	}
}

// Validate checks configuration values.
func (c Configuration) Validate() error {
	var err error
	if c.Interval <= 0 {
		err = multierr.Append(err, errors.New("invalid interval, must be > 0"))
	}
	if c.WarningMultiple <= 0 {
		err = multierr.Append(err, errors.New("invalid warning_multiple, must be > 0"))
	}
	if c.ErrorMultiple < c.WarningMultiple {
		err = multierr.Append(err, errors.New("invalid error_multiple, must be >= warning_multiple"))
	}
	if c.Parallelism <= 0 {
		err = multierr.Append(err, errors.New("invalid parallelism, must be > 0"))
	}
	if c.UnwindRatio < 0 {
		err = multierr.Append(err, errors.New("invalid unwind_ratio, must be >= 0"))
	}
	if c.Priority <= 0 {
		err = multierr.Append(err, errors.New("invalid priority, must be > 0"))
	}
	if dcErr := dcfilter.Validate(c.DC); dcErr != nil {
		err = multierr.Append(err, errors.Wrap(dcErr, "invalid dc"))
	}
	return err
}

// Equal returns true iff configurations have the same values.
func (c Configuration) Equal(o Configuration) bool {
	if c.Interval != o.Interval ||
		c.WarningMultiple != o.WarningMultiple ||
		c.ErrorMultiple != o.ErrorMultiple ||
		c.Parallelism != o.Parallelism ||
		c.UnwindRatio != o.UnwindRatio ||
		c.Priority != o.Priority {
		return false
	}
	if len(c.DC) != len(o.DC) {
		return false
	}
	for i := range c.DC {
		if c.DC[i] != o.DC[i] {
			return false
		}
	}
	return true
}

// warningAfter is the age of a range past which the table is overdue.
func (c Configuration) warningAfter() time.Duration {
	return c.Interval + time.Duration(c.WarningMultiple*float64(c.Interval))
}

// errorAfter is the age of a range past which the table is critical.
func (c Configuration) errorAfter() time.Duration {
	return c.Interval + time.Duration(c.ErrorMultiple*float64(c.Interval))
}

// HistoryWindow returns how long back repair history must be read so that
// ranges at error level can be told apart from the other ones.
func (c Configuration) HistoryWindow() time.Duration {
	return c.errorAfter() + c.Interval
}
