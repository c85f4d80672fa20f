// Copyright (C) 2017 ScyllaDB

package scyllaclient

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Config specifies the Client configuration.
type Config struct {
	// Hosts specifies all the cluster hosts that for a pool of hosts for the
	// client.
	Hosts []string `yaml:"hosts"`
	// Port specifies the Scylla REST API port.
	Port string `yaml:"port"`
	// Transport scheme HTTP or HTTPS.
	Scheme string `yaml:"scheme"`
	// Timeout specifies time to complete a single request to Scylla REST API
	// possibly including opening a TCP connection.
	Timeout time.Duration `yaml:"timeout"`
	// Backoff specifies parameters of exponential backoff used when requests
	// to Scylla REST API fail.
	Backoff BackoffConfig `yaml:"backoff"`
	// PoolDecayDuration specifies size of time window to measure average
	// request time in Epsilon-Greedy host pool.
	PoolDecayDuration time.Duration `yaml:"pool_decay_duration"`
	// RepairStatusWait specifies how long a single repair status long polling
	// request waits for repair to finish.
	RepairStatusWait time.Duration `yaml:"repair_status_wait"`

	// Transport allows for setting a custom round tripper.
	Transport http.RoundTripper `yaml:"-"`
}

// BackoffConfig specifies request exponential backoff parameters.
type BackoffConfig struct {
	WaitMin    time.Duration `yaml:"wait_min"`
	WaitMax    time.Duration `yaml:"wait_max"`
	MaxRetries uint64        `yaml:"max_retries"`
	Multiplier float64       `yaml:"multiplier"`
	Jitter     float64       `yaml:"jitter"`
}

// DefaultConfig returns a Config initialized with default values.
func DefaultConfig() Config {
	return Config{
		Port:    "10000",
		Scheme:  "http",
		Timeout: 15 * time.Second,
		Backoff: BackoffConfig{
			WaitMin:    1 * time.Second,
			WaitMax:    30 * time.Second,
			MaxRetries: 9,
			Multiplier: 2,
			Jitter:     0.2,
		},
		PoolDecayDuration: 30 * time.Minute,
		RepairStatusWait:  30 * time.Second,
	}
}

// TestConfig is a convenience function equal to calling DefaultConfig and
// setting hosts manually.
func TestConfig(hosts ...string) Config {
	config := DefaultConfig()
	config.Hosts = hosts

	config.Timeout = 5 * time.Second
	config.Backoff.MaxRetries = 2
	config.Backoff.WaitMin = 10 * time.Millisecond
	config.Backoff.WaitMax = 20 * time.Millisecond
	config.RepairStatusWait = time.Second

	return config
}

// Validate checks if all the fields are properly set.
func (c Config) Validate() error {
	var err error
	if len(c.Hosts) == 0 {
		err = multierr.Append(err, errors.New("missing hosts"))
	}
	if c.Port == "" {
		err = multierr.Append(err, errors.New("missing port"))
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		err = multierr.Append(err, errors.Errorf("invalid scheme %q", c.Scheme))
	}
	if c.Timeout <= 0 {
		err = multierr.Append(err, errors.New("invalid timeout, must be > 0"))
	}
	if c.RepairStatusWait < time.Second {
		err = multierr.Append(err, errors.New("invalid repair_status_wait, must be >= 1s"))
	}
	return err
}
