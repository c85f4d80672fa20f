// Copyright (C) 2017 ScyllaDB

package schedule

import (
	"context"
	"time"
)

// Listener specifies pluggable hooks for manager events.
type Listener interface {
	OnRegister(ctx context.Context, j Job)
	OnDeregister(ctx context.Context, j Job)
	OnRunStart(ctx context.Context, j Job)
	OnRunSuccess(ctx context.Context, j Job, d time.Duration)
	OnRunError(ctx context.Context, j Job, d time.Duration, err error)
}

type nopListener struct{}

func (l nopListener) OnRegister(ctx context.Context, j Job) {
}

func (l nopListener) OnDeregister(ctx context.Context, j Job) {
}

func (l nopListener) OnRunStart(ctx context.Context, j Job) {
}

func (l nopListener) OnRunSuccess(ctx context.Context, j Job, d time.Duration) {
}

func (l nopListener) OnRunError(ctx context.Context, j Job, d time.Duration, err error) {
}

// NopListener returns a Listener implementation that has no effects.
func NopListener() Listener {
	return nopListener{}
}
