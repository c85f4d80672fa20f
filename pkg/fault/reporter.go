// Copyright (C) 2017 ScyllaDB

package fault

import (
	"context"
	"sync"

	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/metrics"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
)

type faultKey struct {
	table uuid.UUID
	kind  repair.FaultKind
}

// LogReporter logs table faults and exposes their current level as a metric.
// It keeps the last unrepaired and state faults of every table so that they
// can be listed, execution faults are events and are only logged.
type LogReporter struct {
	logger  log.Logger
	metrics metrics.FaultMetrics

	mu     sync.Mutex
	active map[faultKey]repair.Fault
}

var _ repair.FaultReporter = &LogReporter{}

func NewLogReporter(m metrics.FaultMetrics, logger log.Logger) *LogReporter {
	return &LogReporter{
		logger:  logger,
		metrics: m,
		active:  make(map[faultKey]repair.Fault),
	}
}

// ReportFault implements repair.FaultReporter.
func (r *LogReporter) ReportFault(ctx context.Context, f repair.Fault) {
	r.metrics.SetLevel(f.Table.Keyspace, f.Table.Table, string(f.Kind), int(f.Level))

	if f.Kind != repair.FaultExecution {
		k := faultKey{table: f.Table.ID, kind: f.Kind}
		r.mu.Lock()
		if f.Level == repair.FaultCleared {
			delete(r.active, k)
		} else {
			r.active[k] = f
		}
		r.mu.Unlock()
	}

	keyvals := []interface{}{
		"keyspace", f.Table.Keyspace,
		"table", f.Table.Table,
		"kind", f.Kind,
		"level", f.Level,
	}
	if f.Cause != nil {
		keyvals = append(keyvals, "error", f.Cause)
	}

	switch f.Level {
	case repair.FaultError:
		r.logger.Error(ctx, "Table fault", keyvals...)
	case repair.FaultWarning:
		r.logger.Info(ctx, "Table fault", keyvals...)
	default:
		r.logger.Info(ctx, "Table fault cleared", keyvals...)
	}
}

// Active returns faults that are not cleared, errors first.
func (r *LogReporter) Active() []repair.Fault {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]repair.Fault, 0, len(r.active))
	for _, f := range r.active {
		out = append(out, f)
	}
	sortFaults(out)
	return out
}
