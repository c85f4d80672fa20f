// Copyright (C) 2017 ScyllaDB

package repair

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/retry"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// ErrJobBusy is returned by Run when the previous step is still running.
var ErrJobBusy = errors.New("repair step in progress")

// ErrStepInterrupted is returned by Executor when a step was stopped by
// a termination issued for another table's step. Such a step is retried
// without counting it as a failure.
var ErrStepInterrupted = errors.New("repair step interrupted")

// interrupted returns true if all errors combined in err are ErrStepInterrupted.
func interrupted(err error) bool {
	errs := multierr.Errors(err)
	for _, e := range errs {
		if !errors.Is(e, ErrStepInterrupted) {
			return false
		}
	}
	return len(errs) > 0
}

type lifecycle int

const (
	jobActive lifecycle = iota
	jobClosing
	jobClosed
)

func (l lifecycle) String() string {
	switch l {
	case jobActive:
		return "active"
	case jobClosing:
		return "closing"
	default:
		return "closed"
	}
}

// closedChan is used as predecessor of jobs that do not replace any job.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// jobDeps are collaborators shared by all jobs of a scheduler.
type jobDeps struct {
	config   Config
	executor Executor
	faults   FaultReporter
	metrics  Metrics
	logger   log.Logger
	now      func() time.Time

	// wakeup makes the schedule manager poll jobs.
	wakeup func()

	// wg tracks background goroutines and jobs that are not closed.
	wg *sync.WaitGroup
}

// TableRepairJob keeps a single table repaired according to its
// configuration. It's driven by the schedule manager through Runnable,
// Priority and Run.
//
// A job is ACTIVE until the scheduler closes it. Closing cancels a running
// step, the job is CLOSED when the step returns or when the graceful stop
// timeout elapses. A CLOSED job is never runnable again.
//
// A job replacing another one takes over its fault state once the replaced
// job is CLOSED, faults of a table are cleared only when the table is
// removed.
type TableRepairJob struct {
	jobDeps
	id     uuid.UUID
	table  TableReference
	conf   Configuration
	source StateSource

	// after is closed when the job this job replaced is closed.
	after <-chan struct{}
	done  chan struct{}
	runs  *atomic.Int64

	mu sync.Mutex

	// pred is the replaced job, it's reset when its fault state is taken.
	pred          *TableRepairJob
	replaced      bool
	lifecycle     lifecycle
	running       bool
	cancel        context.CancelFunc
	state         State
	hasState      bool
	verdict       Verdict
	evaluated     bool
	failures      int
	stateFailures int
	lastErr       error
	notBefore     time.Time
	faultLevel    FaultLevel
	backoff       retry.Backoff
}

func newTableRepairJob(deps jobDeps, table TableReference, c Configuration, source StateSource, pred *TableRepairJob) *TableRepairJob {
	after := closedChan
	if pred != nil {
		after = pred.done
	}
	deps.logger = deps.logger.With("table", table.String())
	deps.wg.Add(1)
	return &TableRepairJob{
		jobDeps: deps,
		id:      uuid.MustRandom(),
		table:   table,
		conf:    c,
		source:  source,
		after:   after,
		pred:    pred,
		done:    make(chan struct{}),
		runs:    atomic.NewInt64(0),
		backoff: deps.config.Backoff.newBackoff(),
	}
}

// ID returns the job ID, each job has a new one.
func (j *TableRepairJob) ID() uuid.UUID {
	return j.id
}

// Table returns the repaired table.
func (j *TableRepairJob) Table() TableReference {
	return j.table
}

// Configuration returns the configuration the job was created with.
func (j *TableRepairJob) Configuration() Configuration {
	return j.conf
}

// Done returns a channel that is closed when the job reaches CLOSED.
func (j *TableRepairJob) Done() <-chan struct{} {
	return j.done
}

// Runs returns the number of finished steps.
func (j *TableRepairJob) Runs() int64 {
	return j.runs.Load()
}

func (j *TableRepairJob) String() string {
	return "repair " + j.table.String()
}

// Runnable reads the table repair state and returns true if a step shall be
// run. It returns false if the job is not active, a step is running,
// a job it replaced is still closing or the job is backing off.
func (j *TableRepairJob) Runnable(ctx context.Context, now time.Time) bool {
	j.mu.Lock()
	if j.lifecycle != jobActive || j.running || now.Before(j.notBefore) {
		j.mu.Unlock()
		return false
	}
	j.mu.Unlock()

	select {
	case <-j.after:
	default:
		return false
	}

	stateCtx, cancel := context.WithTimeout(ctx, j.config.StateTimeout)
	state, err := j.source.State(stateCtx)
	cancel()

	var faults []Fault
	defer func() {
		j.reportFaults(ctx, faults)
	}()

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.lifecycle != jobActive {
		return false
	}
	j.inheritLocked()

	if err != nil {
		j.stateFailures++
		j.logger.Info(ctx, "Failed to read repair state",
			"failures", j.stateFailures,
			"error", err,
		)
		if j.stateFailures == j.config.StateFailureThreshold {
			faults = append(faults, Fault{
				Table: j.table,
				Kind:  FaultState,
				Level: FaultWarning,
				Cause: errors.Wrap(err, "read repair state"),
			})
		}
		return false
	}
	if j.stateFailures >= j.config.StateFailureThreshold {
		faults = append(faults, Fault{Table: j.table, Kind: FaultState, Level: FaultCleared})
	}
	j.stateFailures = 0

	v := Evaluate(state, j.conf, now)
	j.state = state
	j.hasState = true
	j.verdict = v
	j.evaluated = true
	j.metrics.SetState(j.table.Keyspace, j.table.Table, v.RepairedRatio, v.Age)

	if l := faultLevel(v.Dueness); l != j.faultLevel {
		j.faultLevel = l
		f := Fault{Table: j.table, Kind: FaultUnrepaired, Level: l}
		if l != FaultCleared {
			since := "ever"
			if !v.OldestRepairedAt.IsZero() {
				since = v.OldestRepairedAt.Format(time.RFC3339)
			}
			f.Cause = errors.Errorf("%.0f%% of ranges not repaired, oldest repair %s", 100*(1-v.RepairedRatio), since)
		}
		faults = append(faults, f)
	}

	return v.Dueness != NotDue
}

// Priority returns the weight of the job, the older the least recently
// repaired range the higher the priority. Not due jobs have priority 0.
func (j *TableRepairJob) Priority(now time.Time) int64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.evaluated || j.verdict.Dueness == NotDue {
		return 0
	}
	late := j.verdict.Late(j.conf)
	if late < 0 {
		late = 0
	}
	return (int64(late/time.Minute) + 1) * int64(j.conf.Priority)
}

// Run executes a single repair step of the ranges due for repair, at most
// Parallelism ranges are repaired. It returns promptly when the job is
// closed while the step is running.
func (j *TableRepairJob) Run(ctx context.Context) error {
	j.mu.Lock()
	if j.lifecycle != jobActive {
		j.mu.Unlock()
		return nil
	}
	if j.running {
		j.mu.Unlock()
		return ErrJobBusy
	}
	if !j.evaluated || j.verdict.Dueness == NotDue {
		j.mu.Unlock()
		return nil
	}
	ranges := j.nextRangesLocked()
	if j.config.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.StepTimeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	j.running = true
	j.cancel = cancel
	j.mu.Unlock()

	j.logger.Info(ctx, "Repairing ranges", "ranges", len(ranges))

	start := j.now()
	err := j.executor.Repair(ctx, j.table, ranges, j.conf)
	d := j.now().Sub(start)
	cancel()

	var faults []Fault
	j.mu.Lock()
	j.running = false
	j.cancel = nil
	j.evaluated = false
	j.runs.Inc()

	closing := j.lifecycle != jobActive
	switch {
	case err == nil:
		j.metrics.ObserveStep(j.table.Keyspace, j.table.Table, len(ranges), d, true)
		j.failures = 0
		j.lastErr = nil
		j.backoff.Reset()
		j.notBefore = j.now().Add(time.Duration(float64(d) * j.conf.UnwindRatio))
		j.logger.Info(ctx, "Repaired ranges", "ranges", len(ranges), "duration", d)
	case closing:
		// Step canceled by close is neither a success nor a failure.
		j.logger.Info(ctx, "Repair step stopped", "error", err)
	case interrupted(err):
		j.logger.Info(ctx, "Repair step interrupted, will retry", "error", err)
		err = nil
	default:
		j.metrics.ObserveStep(j.table.Keyspace, j.table.Table, len(ranges), d, false)
		j.failures++
		j.lastErr = err
		wait := j.backoff.NextBackOff()
		if wait == retry.Stop {
			wait = j.config.Backoff.MaxInterval
		}
		j.notBefore = j.now().Add(wait)
		j.logger.Error(ctx, "Repair step failed",
			"failures", j.failures,
			"retry_in", wait,
			"error", err,
		)
		faults = append(faults, Fault{
			Table: j.table,
			Kind:  FaultExecution,
			Level: FaultWarning,
			Cause: err,
		})
	}
	var finish func()
	if closing && j.lifecycle == jobClosing {
		finish, _ = j.closeLocked()
	}
	j.mu.Unlock()

	j.reportFaults(ctx, faults)
	if finish != nil {
		finish()
	}

	if closing {
		return nil
	}
	return err
}

// nextRangesLocked returns at most Parallelism least recently repaired
// ranges.
func (j *TableRepairJob) nextRangesLocked() []TokenRange {
	n := j.conf.Parallelism
	if n > len(j.verdict.DueRanges) {
		n = len(j.verdict.DueRanges)
	}
	out := make([]TokenRange, n)
	for i := 0; i < n; i++ {
		out[i] = j.verdict.DueRanges[i].TokenRange
	}
	return out
}

// close requests the job to stop, faults of the table are cleared.
// It does not block, returned channel is closed when the job reaches CLOSED.
// It's safe to call close many times.
func (j *TableRepairJob) close(grace time.Duration) <-chan struct{} {
	return j.stop(grace, false)
}

// replace is like close but the table faults are kept for the replacing job.
func (j *TableRepairJob) replace(grace time.Duration) <-chan struct{} {
	return j.stop(grace, true)
}

func (j *TableRepairJob) stop(grace time.Duration, replaced bool) <-chan struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.lifecycle != jobActive {
		return j.done
	}
	j.lifecycle = jobClosing
	j.replaced = replaced

	if !j.running {
		// Job is CLOSED only after the job it replaced, this keeps
		// a chain of replacements from running steps in parallel.
		select {
		case <-j.after:
			if finish, reports := j.closeLocked(); reports {
				go finish()
			} else {
				finish()
			}
		default:
			go func() {
				<-j.after
				j.mu.Lock()
				finish, _ := j.closeLocked()
				j.mu.Unlock()
				finish()
			}()
		}
		return j.done
	}

	j.logger.Info(context.Background(), "Stopping repair step")
	j.cancel()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		t := time.NewTimer(grace)
		defer t.Stop()

		select {
		case <-j.done:
			return
		case <-t.C:
		}

		j.mu.Lock()
		var finish func()
		if j.lifecycle == jobClosing {
			j.logger.Info(context.Background(), "Repair step did not stop in time", "timeout", grace)
			finish, _ = j.closeLocked()
		}
		j.mu.Unlock()
		if finish != nil {
			finish()
		}
	}()

	return j.done
}

// inheritLocked takes over fault state of the replaced job, the replaced
// job must be CLOSED.
func (j *TableRepairJob) inheritLocked() {
	p := j.pred
	if p == nil {
		return
	}
	j.pred = nil

	p.mu.Lock()
	j.faultLevel = p.faultLevel
	j.stateFailures = p.stateFailures
	p.mu.Unlock()
}

// closeLocked moves job to CLOSED. The returned function must be called
// without the lock held, it clears the table faults unless the job is
// replaced and then closes done. Faults are cleared before done is closed
// so that a job started for the table later reports after them.
// The returned bool is true if there are faults to clear.
func (j *TableRepairJob) closeLocked() (func(), bool) {
	j.inheritLocked()
	j.lifecycle = jobClosed

	var faults []Fault
	if !j.replaced {
		if j.faultLevel != FaultCleared {
			faults = append(faults, Fault{Table: j.table, Kind: FaultUnrepaired, Level: FaultCleared})
		}
		if j.stateFailures >= j.config.StateFailureThreshold {
			faults = append(faults, Fault{Table: j.table, Kind: FaultState, Level: FaultCleared})
		}
		j.faultLevel = FaultCleared
		j.stateFailures = 0
	}
	replaced := j.replaced

	return func() {
		if !replaced {
			j.metrics.DeleteTable(j.table.Keyspace, j.table.Table)
		}
		j.reportFaults(context.Background(), faults)
		close(j.done)
		if j.wakeup != nil {
			j.wakeup()
		}
		j.wg.Done()
	}, len(faults) > 0
}

// reportFaults sends faults to the reporter, every report is bounded by
// FaultTimeout.
func (j *TableRepairJob) reportFaults(ctx context.Context, faults []Fault) {
	for _, f := range faults {
		j.reportFault(ctx, f)
	}
}

func (j *TableRepairJob) reportFault(ctx context.Context, f Fault) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.config.FaultTimeout)
	defer cancel()

	done := make(chan struct{})
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer close(done)
		j.faults.ReportFault(ctx, f)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		j.logger.Info(ctx, "Fault report timed out", "fault", f.String(), "timeout", j.config.FaultTimeout)
	}
}

// status returns a consistent view of the job.
func (j *TableRepairJob) status(withRanges bool) JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := JobStatus{
		ID:                  j.id,
		TableID:             j.table.ID,
		Keyspace:            j.table.Keyspace,
		Table:               j.table.Table,
		Status:              StatusInQueue,
		Recurring:           true,
		Running:             j.running,
		Lifecycle:           j.lifecycle.String(),
		Configuration:       j.conf,
		ConsecutiveFailures: j.failures,
		Runs:                j.runs.Load(),
	}
	if j.lastErr != nil {
		s.LastError = j.lastErr.Error()
	}
	if j.hasState {
		v := Evaluate(j.state, j.conf, j.now())
		s.Status = statusOf(v.Dueness)
		s.RepairedRatio = v.RepairedRatio
		s.CompletedAt = v.OldestRepairedAt
		s.NextRepair = v.NextRepair
		if withRanges {
			s.Ranges = rangeStatuses(j.state, j.conf, j.now())
		}
	}
	return s
}
