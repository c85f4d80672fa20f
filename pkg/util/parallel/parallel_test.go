// Copyright (C) 2017 ScyllaDB

package parallel

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

func TestRunLimit(t *testing.T) {
	t.Parallel()

	const n = 20

	for _, limit := range []int{1, 5} {
		limit := limit
		t.Run(string(rune('0'+limit)), func(t *testing.T) {
			t.Parallel()

			var (
				active = atomic.NewInt32(0)
				max    = atomic.NewInt32(0)
				calls  = atomic.NewInt32(0)
			)
			err := Run(context.Background(), n, limit, func(ctx context.Context, i int) error {
				v := active.Inc()
				for {
					m := max.Load()
					if v <= m || max.CAS(m, v) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				active.Dec()
				calls.Inc()
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if calls.Load() != n {
				t.Fatalf("calls = %d, expected %d", calls.Load(), n)
			}
			if max.Load() > int32(limit) {
				t.Fatalf("parallel calls = %d, expected at most %d", max.Load(), limit)
			}
		})
	}
}

func TestRunCombinesErrors(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), 4, NoLimit, func(ctx context.Context, i int) error {
		if i%2 == 0 {
			return errors.Errorf("call %d", i)
		}
		return nil
	})
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("Run() errors = %d, expected 2", n)
	}
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := atomic.NewInt32(0)
	err := Run(ctx, 3, 1, func(ctx context.Context, i int) error {
		calls.Inc()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error %v, expected %s", err, context.Canceled)
	}
	if calls.Load() != 0 {
		t.Fatalf("calls = %d, expected 0", calls.Load())
	}
}
