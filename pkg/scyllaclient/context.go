// Copyright (C) 2017 ScyllaDB

package scyllaclient

import (
	"context"

	"github.com/scylladb/scylla-repair-scheduler/pkg/util/httpmw"
)

// ForceHost makes the request go to the given host instead of a host from
// the pool.
func ForceHost(ctx context.Context, host string) context.Context {
	return httpmw.ForceHost(ctx, host)
}

// NoRetry disables retries of requests.
func NoRetry(ctx context.Context) context.Context {
	return httpmw.NoRetry(ctx)
}
