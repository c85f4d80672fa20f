// Copyright (C) 2017 ScyllaDB

package main

import (
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	config "github.com/scylladb/scylla-repair-scheduler/pkg/config/server"
)

func gocqlClusterConfig(c config.Config) (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(c.CQL.Hosts...)
	cluster.Port = c.CQL.Port

	consistency, err := gocql.ParseConsistencyWrapper(c.CQL.Consistency)
	if err != nil {
		return nil, errors.Wrap(err, "cql.consistency")
	}
	cluster.Consistency = consistency

	// Repair history is read from system tables, no keyspace is needed.
	cluster.Keyspace = "system"
	cluster.Timeout = c.CQL.Timeout
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		NumRetries: 5,
		Min:        time.Second,
		Max:        10 * time.Second,
	}

	// Authentication
	if c.CQL.User != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: c.CQL.User,
			Password: c.CQL.Password,
		}
	}

	// Host selection
	fallback := gocql.RoundRobinHostPolicy()
	if c.CQL.LocalDC != "" {
		fallback = gocql.DCAwareRoundRobinPolicy(c.CQL.LocalDC)
	}
	if c.CQL.TokenAware {
		cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(fallback)
	} else {
		cluster.PoolConfig.HostSelectionPolicy = fallback
	}

	return cluster, nil
}
