// Copyright (C) 2017 ScyllaDB

package tablewatch

import (
	"time"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/inexlist"
	"go.uber.org/multierr"
)

// Override sets repair configuration of tables matching the glob pattern
// on "keyspace.table". Zero fields of Configuration are taken from the
// default configuration.
type Override struct {
	Tables        string               `yaml:"tables"`
	Configuration repair.Configuration `yaml:"configuration"`
}

// Config specifies the table watcher.
type Config struct {
	Enabled         bool          `yaml:"enabled"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	// Tables is a list of glob patterns on "keyspace.table" that select
	// tables to repair, patterns prefixed with "!" exclude tables.
	Tables    []string   `yaml:"tables"`
	Overrides []Override `yaml:"overrides"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		RefreshInterval: time.Minute,
		Tables:          []string{"*.*"},
	}
}

// Validate checks if config contains correct values.
func (c Config) Validate() (err error) {
	if c.RefreshInterval <= 0 {
		err = multierr.Append(err, errors.New("invalid refresh_interval, must be > 0"))
	}
	if _, e := inexlist.ParseInExList(c.Tables); e != nil {
		err = multierr.Append(err, errors.Wrap(e, "invalid tables"))
	}
	for i, o := range c.Overrides {
		if _, e := glob.Compile(o.Tables); e != nil || o.Tables == "" {
			err = multierr.Append(err, errors.Errorf("invalid overrides[%d] tables %q", i, o.Tables))
		}
	}
	return service.ErrValidate(err)
}

// withDefaults fills zero fields of c with values from d.
func withDefaults(c, d repair.Configuration) repair.Configuration {
	if c.Interval == 0 {
		c.Interval = d.Interval
	}
	if c.WarningMultiple == 0 {
		c.WarningMultiple = d.WarningMultiple
	}
	if c.ErrorMultiple == 0 {
		c.ErrorMultiple = d.ErrorMultiple
	}
	if c.Parallelism == 0 {
		c.Parallelism = d.Parallelism
	}
	if c.UnwindRatio == 0 {
		c.UnwindRatio = d.UnwindRatio
	}
	if c.DC == nil {
		c.DC = d.DC
	}
	if c.Priority == 0 {
		c.Priority = d.Priority
	}
	return c
}
