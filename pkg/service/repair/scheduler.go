// Copyright (C) 2017 ScyllaDB

package repair

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/schedule"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/timeutc"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
)

type registration struct {
	job    *TableRepairJob
	handle schedule.Handle
}

// Scheduler keeps at most one repair job per table registered with
// the schedule manager.
//
// All registry changes are done under the write lock so that a table is
// never left without a job or with two active jobs. Closing jobs is
// requested under the lock but waiting for them is not.
type Scheduler struct {
	config   Config
	factory  StateFactory
	schedule ScheduleManager
	deps     jobDeps

	mu   sync.RWMutex
	jobs map[uuid.UUID]*registration

	// removed are jobs of removed tables that may not be closed yet.
	removed map[uuid.UUID]*TableRepairJob
	opened  bool
	closed  bool

	wg sync.WaitGroup
}

// NewScheduler returns a new Scheduler, call Open to start accepting
// configurations.
func NewScheduler(config Config, factory StateFactory, executor Executor, faults FaultReporter,
	metrics Metrics, manager ScheduleManager, logger log.Logger,
) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if factory == nil {
		return nil, errors.New("invalid state factory")
	}
	if executor == nil {
		return nil, errors.New("invalid executor")
	}
	if faults == nil {
		return nil, errors.New("invalid fault reporter")
	}
	if metrics == nil {
		return nil, errors.New("invalid metrics")
	}
	if manager == nil {
		return nil, errors.New("invalid schedule manager")
	}

	s := &Scheduler{
		config:   config,
		factory:  factory,
		schedule: manager,
		jobs:     make(map[uuid.UUID]*registration),
		removed:  make(map[uuid.UUID]*TableRepairJob),
	}
	s.deps = jobDeps{
		config:   config,
		executor: executor,
		faults:   faults,
		metrics:  metrics,
		logger:   logger,
		now:      timeutc.Now,
		wakeup:   manager.Wakeup,
		wg:       &s.wg,
	}
	return s, nil
}

// Open starts accepting configurations.
func (s *Scheduler) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.opened {
		return
	}
	s.opened = true
	s.deps.logger.Info(context.Background(), "Repair scheduler opened")
}

// PutConfiguration makes table repaired according to the configuration.
// It's a noop if table is already registered with an equal configuration,
// otherwise the existing job is closed and replaced with a new one.
// The replacement is not run before the closed job stops.
func (s *Scheduler) PutConfiguration(ctx context.Context, table TableReference, c Configuration) error {
	if err := table.Validate(); err != nil {
		return service.ErrValidate(errors.Wrap(err, "invalid table"))
	}
	if err := c.Validate(); err != nil {
		return service.ErrValidate(errors.Wrap(err, "invalid configuration"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened || s.closed {
		s.deps.logger.Info(ctx, "Configuration ignored, scheduler not open", "table", table.String())
		return nil
	}

	var pred *TableRepairJob
	if r, ok := s.jobs[table.ID]; ok {
		if r.job.Configuration().Equal(c) {
			return nil
		}
		s.schedule.Deregister(r.handle)
		r.job.replace(s.config.GracefulStopTimeout)
		pred = r.job
		s.deps.logger.Info(ctx, "Replacing repair job", "table", table.String(), "job_id", r.job.ID())
	} else if p, ok := s.removed[table.ID]; ok {
		// Job of a re-added table waits for the removed one to stop.
		delete(s.removed, table.ID)
		pred = p
	}

	j := newTableRepairJob(s.deps, table, c, s.factory.NewStateSource(table, c), pred)
	s.jobs[table.ID] = &registration{
		job:    j,
		handle: s.schedule.Register(j),
	}
	s.deps.logger.Info(ctx, "Repair job registered",
		"table", table.String(),
		"job_id", j.ID(),
		"interval", c.Interval,
	)
	return nil
}

// RemoveConfiguration stops repairing the table, it's a noop if table is
// not registered.
func (s *Scheduler) RemoveConfiguration(ctx context.Context, table TableReference) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.jobs[table.ID]
	if !ok {
		return
	}
	delete(s.jobs, table.ID)
	s.schedule.Deregister(r.handle)
	r.job.close(s.config.GracefulStopTimeout)
	s.deps.logger.Info(ctx, "Repair job removed", "table", table.String(), "job_id", r.job.ID())

	for id, j := range s.removed {
		if isDone(j) {
			delete(s.removed, id)
		}
	}
	if !isDone(r.job) {
		s.removed[table.ID] = r.job
	}
}

func isDone(j *TableRepairJob) bool {
	select {
	case <-j.Done():
		return true
	default:
		return false
	}
}

// Close deregisters and closes all the jobs, scheduler does not accept
// configurations after that. It does not wait for jobs to stop, use Wait.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for id, r := range s.jobs {
		s.schedule.Deregister(r.handle)
		r.job.close(s.config.GracefulStopTimeout)
		delete(s.jobs, id)
	}
	s.deps.logger.Info(context.Background(), "Repair scheduler closed")
}

// Wait blocks until all closed jobs are stopped and all fault reports are
// done. It waits forever if scheduler is not closed.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Jobs returns status of registered jobs sorted by keyspace and table.
func (s *Scheduler) Jobs(filter JobFilter) []JobStatus {
	s.mu.RLock()
	jobs := make([]*TableRepairJob, 0, len(s.jobs))
	for _, r := range s.jobs {
		if filter.match(r.job.Table()) {
			jobs = append(jobs, r.job)
		}
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		a, b := jobs[i].Table(), jobs[j].Table()
		if a.Keyspace != b.Keyspace {
			return a.Keyspace < b.Keyspace
		}
		return a.Table < b.Table
	})
	if filter.Limit > 0 && len(jobs) > filter.Limit {
		jobs = jobs[:filter.Limit]
	}

	out := make([]JobStatus, len(jobs))
	for i := range jobs {
		out[i] = jobs[i].status(false)
	}
	return out
}

// Job returns status of a job with token range details.
func (s *Scheduler) Job(id uuid.UUID) (JobStatus, error) {
	s.mu.RLock()
	var job *TableRepairJob
	for _, r := range s.jobs {
		if r.job.ID() == id {
			job = r.job
			break
		}
	}
	s.mu.RUnlock()

	if job == nil {
		return JobStatus{}, service.ErrNotFound
	}
	return job.status(true), nil
}

// Configuration returns configuration of the table if it's registered.
func (s *Scheduler) Configuration(table TableReference) (Configuration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.jobs[table.ID]
	if !ok {
		return Configuration{}, false
	}
	return r.job.Configuration(), true
}

// Tables returns references of registered tables.
func (s *Scheduler) Tables() []TableReference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TableReference, 0, len(s.jobs))
	for _, r := range s.jobs {
		out = append(out, r.job.Table())
	}
	return out
}

// setNow replaces the clock used by jobs, it applies to new jobs only.
func (s *Scheduler) setNow(now func() time.Time) {
	s.mu.Lock()
	s.deps.now = now
	s.mu.Unlock()
}
