// Copyright (C) 2017 ScyllaDB

package parallel

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// NoLimit means full parallelism mode.
const NoLimit = 0

// Run calls f for every i in [0, n) with at most limit calls in flight,
// NoLimit runs all of them at once. Errors of all calls are combined.
// Calls that have not started when ctx is canceled are skipped and
// ctx error is returned for them.
func Run(ctx context.Context, n, limit int, f func(ctx context.Context, i int) error) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	var (
		mu   sync.Mutex
		errs error
	)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = f(ctx, i)
			}
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait() // nolint: errcheck

	return errs
}
