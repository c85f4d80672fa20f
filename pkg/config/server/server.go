// Copyright (C) 2017 ScyllaDB

package server

import (
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/schedule"
	"github.com/scylladb/scylla-repair-scheduler/pkg/scyllaclient"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/tablewatch"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/cfgutil"
	"go.uber.org/multierr"
)

// CQLConfig specifies the CQL connection used to read schema and repair
// history.
type CQLConfig struct {
	Hosts       []string      `yaml:"hosts"`
	Port        int           `yaml:"port"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	LocalDC     string        `yaml:"local_dc"`
	Consistency string        `yaml:"consistency"`
	Timeout     time.Duration `yaml:"timeout"`
	TokenAware  bool          `yaml:"token_aware"`
}

// Config contains configuration structure for scylla repair scheduler.
type Config struct {
	HTTP       string              `yaml:"http"`
	Prometheus string              `yaml:"prometheus"`
	Logger     LogConfig           `yaml:"logger"`
	CQL        CQLConfig           `yaml:"cql"`
	Scylla     scyllaclient.Config `yaml:"scylla"`
	Schedule   schedule.Config     `yaml:"schedule"`
	Repair     repair.Config       `yaml:"repair"`
	TableWatch tablewatch.Config   `yaml:"table_watch"`
}

func DefaultConfig() Config {
	return Config{
		HTTP:       "127.0.0.1:5080",
		Prometheus: ":5090",
		Logger:     DefaultLogConfig(),
		CQL: CQLConfig{
			Hosts:       []string{"127.0.0.1"},
			Port:        9042,
			Consistency: "LOCAL_QUORUM",
			Timeout:     600 * time.Millisecond,
			TokenAware:  true,
		},
		Scylla:     scyllaclient.DefaultConfig(),
		Schedule:   schedule.DefaultConfig(),
		Repair:     repair.DefaultConfig(),
		TableWatch: tablewatch.DefaultConfig(),
	}
}

// ParseConfigFiles takes list of configuration file paths and returns parsed
// config struct with merged configuration from all provided files.
// Scylla REST API hosts default to CQL hosts.
func ParseConfigFiles(files []string) (Config, error) {
	c := DefaultConfig()
	if err := cfgutil.ParseYAML(&c, files...); err != nil {
		return c, err
	}
	if len(c.Scylla.Hosts) == 0 {
		c.Scylla.Hosts = c.CQL.Hosts
	}
	return c, nil
}

func (c Config) Validate() (err error) {
	if c.HTTP == "" {
		err = multierr.Append(err, errors.New("missing http"))
	}
	if len(c.CQL.Hosts) == 0 {
		err = multierr.Append(err, errors.New("missing cql.hosts"))
	}
	if c.CQL.Port <= 0 {
		err = multierr.Append(err, errors.New("invalid cql.port, must be > 0"))
	}
	if e := c.Scylla.Validate(); e != nil {
		err = multierr.Append(err, errors.Wrap(e, "scylla"))
	}
	if e := c.Schedule.Validate(); e != nil {
		err = multierr.Append(err, errors.Wrap(e, "schedule"))
	}
	if e := c.Repair.Validate(); e != nil {
		err = multierr.Append(err, errors.Wrap(e, "repair"))
	}
	if c.TableWatch.Enabled {
		if e := c.TableWatch.Validate(); e != nil {
			err = multierr.Append(err, errors.Wrap(e, "table_watch"))
		}
	}
	return err
}
