// Copyright (C) 2017 ScyllaDB

package server_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/scylladb/scylla-repair-scheduler/pkg/config/server"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/tablewatch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var configCmpOpts = cmp.Options{
	cmpopts.IgnoreTypes(zap.AtomicLevel{}),
}

func TestConfigModification(t *testing.T) {
	t.Parallel()

	c, err := server.ParseConfigFiles([]string{"testdata/scylla-repair-scheduler.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	golden := server.DefaultConfig()
	golden.HTTP = "127.0.0.1:80"
	golden.Prometheus = "127.0.0.1:9090"
	golden.Logger.Development = true
	golden.CQL = server.CQLConfig{
		Hosts:       []string{"172.16.1.10", "172.16.1.20"},
		Port:        9042,
		User:        "user",
		Password:    "password",
		LocalDC:     "dc1",
		Consistency: "ONE",
		Timeout:     600 * time.Millisecond,
		TokenAware:  false,
	}
	golden.Scylla.Hosts = []string{"172.16.1.10", "172.16.1.20"}
	golden.Scylla.Port = "10001"
	golden.Scylla.Timeout = 5 * time.Second
	golden.Schedule.PollInterval = 10 * time.Second
	golden.Schedule.MaxConcurrent = 4
	golden.Schedule.PollParallelism = 8
	golden.Repair.GracefulStopTimeout = time.Minute
	golden.Repair.StateFailureThreshold = 5
	golden.Repair.Default.Interval = 24 * time.Hour
	golden.Repair.Default.Parallelism = 2
	golden.Repair.Default.DC = []string{"dc1"}
	golden.TableWatch.RefreshInterval = 5 * time.Minute
	golden.TableWatch.Tables = []string{"*.*", "!logs.*"}
	golden.TableWatch.Overrides = []tablewatch.Override{
		{
			Tables:        "ks.big_*",
			Configuration: repair.Configuration{Interval: 168 * time.Hour, Priority: 3},
		},
	}

	if diff := cmp.Diff(c, golden, configCmpOpts); diff != "" {
		t.Fatal(diff)
	}
	if c.Logger.Level.Level() != zapcore.DebugLevel {
		t.Fatalf("Level = %s, expected debug", c.Logger.Level.Level())
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	c, err := server.ParseConfigFiles([]string{"testdata/not-exists.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(c.Scylla.Hosts, c.CQL.Hosts); diff != "" {
		t.Fatal(diff)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	c := server.DefaultConfig()
	c.HTTP = ""
	c.Schedule.MaxConcurrent = 0
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() expected error")
	}
}
