// Copyright (C) 2017 ScyllaDB

package repair

import (
	"context"
	"time"

	"github.com/scylladb/scylla-repair-scheduler/pkg/schedule"
)

// StateSource provides repair state of a single table.
type StateSource interface {
	State(ctx context.Context) (State, error)
}

// StateFactory creates StateSource for a table repaired with
// the given configuration.
type StateFactory interface {
	NewStateSource(table TableReference, c Configuration) StateSource
}

// StateFactoryFunc is an adapter allowing usage of ordinary functions as
// StateFactory.
type StateFactoryFunc func(table TableReference, c Configuration) StateSource

// NewStateSource implements StateFactory.
func (f StateFactoryFunc) NewStateSource(table TableReference, c Configuration) StateSource {
	return f(table, c)
}

// Executor repairs token ranges of a table. A call is a single bounded unit
// of work, it shall return promptly when ctx is canceled.
type Executor interface {
	Repair(ctx context.Context, table TableReference, ranges []TokenRange, c Configuration) error
}

// FaultReporter is notified about changes of table faults.
type FaultReporter interface {
	ReportFault(ctx context.Context, f Fault)
}

// Metrics receives repair observations.
type Metrics interface {
	ObserveStep(keyspace, table string, ranges int, d time.Duration, success bool)
	SetState(keyspace, table string, repairedRatio float64, age time.Duration)
	DeleteTable(keyspace, table string)
}

// ScheduleManager runs registered jobs.
type ScheduleManager interface {
	Register(j schedule.Job) schedule.Handle
	Deregister(h schedule.Handle)
	// Wakeup makes the manager poll jobs.
	Wakeup()
}
