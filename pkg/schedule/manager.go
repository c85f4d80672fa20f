// Copyright (C) 2017 ScyllaDB

package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/parallel"
	"golang.org/x/sync/semaphore"
)

// Job is a unit of recurring work. Manager polls registered jobs and runs
// the ones that are runnable, higher priority first.
type Job interface {
	// Runnable returns true if job shall be run now.
	Runnable(ctx context.Context, now time.Time) bool
	// Priority is called for runnable jobs, higher runs first.
	Priority(now time.Time) int64
	// Run executes a bounded piece of work, it must return when ctx is
	// canceled.
	Run(ctx context.Context) error
	String() string
}

// Handle identifies a registered job.
type Handle uint64

// Manager runs registered jobs. A job is never run twice at the same time.
type Manager struct {
	config   Config
	now      func() time.Time
	listener Listener
	logger   log.Logger

	mu      sync.Mutex
	last    Handle
	jobs    map[Handle]Job
	running map[Handle]struct{}

	sem      *semaphore.Weighted
	wakeupCh chan struct{}
	wg       sync.WaitGroup
}

func NewManager(config Config, now func() time.Time, listener Listener, logger log.Logger) *Manager {
	if listener == nil {
		listener = NopListener()
	}
	return &Manager{
		config:   config,
		now:      now,
		listener: listener,
		logger:   logger,
		jobs:     make(map[Handle]Job),
		running:  make(map[Handle]struct{}),
		sem:      semaphore.NewWeighted(int64(config.MaxConcurrent)),
		wakeupCh: make(chan struct{}, 1),
	}
}

// Register adds job to the manager, the job is polled immediately.
func (m *Manager) Register(j Job) Handle {
	m.mu.Lock()
	m.last++
	h := m.last
	m.jobs[h] = j
	m.mu.Unlock()

	m.logger.Debug(context.Background(), "Register", "job", j.String(), "handle", h)
	m.listener.OnRegister(context.Background(), j)
	m.wakeup()
	return h
}

// Deregister removes job from the manager. It does not stop an active run.
func (m *Manager) Deregister(h Handle) {
	m.mu.Lock()
	j, ok := m.jobs[h]
	delete(m.jobs, h)
	m.mu.Unlock()

	if !ok {
		return
	}
	m.logger.Debug(context.Background(), "Deregister", "job", j.String(), "handle", h)
	m.listener.OnDeregister(context.Background(), j)
}

// Len returns the number of registered jobs.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Start is the manager main loop, it returns when ctx is canceled.
// Runs get ctx as parent context, use Wait to join them.
func (m *Manager) Start(ctx context.Context) {
	m.logger.Info(ctx, "Schedule manager started",
		"poll_interval", m.config.PollInterval,
		"max_concurrent", m.config.MaxConcurrent,
	)

	t := time.NewTicker(m.config.PollInterval)
	defer t.Stop()

	for {
		m.poll(ctx)

		select {
		case <-ctx.Done():
			m.logger.Info(ctx, "Schedule manager stopped")
			return
		case <-t.C:
		case <-m.wakeupCh:
		}
	}
}

// poll asks idle jobs if they are runnable and starts the runnable ones by
// priority until concurrency limit is reached.
func (m *Manager) poll(ctx context.Context) {
	now := m.now()

	m.mu.Lock()
	idle := make([]candidate, 0, len(m.jobs))
	for h, j := range m.jobs {
		if _, ok := m.running[h]; !ok {
			idle = append(idle, candidate{Handle: h, Job: j})
		}
	}
	m.mu.Unlock()

	// Jobs are evaluated in parallel so that a job stuck reading its
	// state delays only the jobs waiting for a free evaluation slot.
	runnable := make([]bool, len(idle))
	parallel.Run(ctx, len(idle), m.config.PollParallelism, func(ctx context.Context, i int) error { // nolint: errcheck
		c := &idle[i]
		if c.Job.Runnable(ctx, now) {
			runnable[i] = true
			c.Priority = c.Job.Priority(now)
		}
		return nil
	})
	if ctx.Err() != nil {
		return
	}

	var q runQueue
	for i, c := range idle {
		if runnable[i] {
			q.Push(c)
		}
	}

	for q.Len() > 0 {
		if !m.sem.TryAcquire(1) {
			m.logger.Debug(ctx, "Concurrency limit reached", "waiting", q.Len())
			return
		}
		c, _ := q.Pop()

		m.mu.Lock()
		_, registered := m.jobs[c.Handle]
		_, running := m.running[c.Handle]
		if !registered || running {
			m.mu.Unlock()
			m.sem.Release(1)
			continue
		}
		m.running[c.Handle] = struct{}{}
		m.mu.Unlock()

		m.asyncRun(ctx, c)
	}
}

func (m *Manager) asyncRun(ctx context.Context, c candidate) {
	ctx = log.WithNewTraceID(ctx)
	m.logger.Info(ctx, "Run", "job", c.Job.String(), "priority", c.Priority)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			delete(m.running, c.Handle)
			m.mu.Unlock()
			m.sem.Release(1)
			m.wakeup()
		}()

		m.listener.OnRunStart(ctx, c.Job)
		start := m.now()
		err := c.Job.Run(ctx)
		d := m.now().Sub(start)
		if err != nil {
			m.logger.Info(ctx, "Run failed", "job", c.Job.String(), "duration", d, "error", err)
			m.listener.OnRunError(ctx, c.Job, d, err)
		} else {
			m.logger.Info(ctx, "Run done", "job", c.Job.String(), "duration", d)
			m.listener.OnRunSuccess(ctx, c.Job, d)
		}
	}()
}

// Wakeup makes the manager poll jobs now, jobs call it when they become
// runnable outside of a run.
func (m *Manager) Wakeup() {
	m.wakeup()
}

func (m *Manager) wakeup() {
	select {
	case m.wakeupCh <- struct{}{}:
	default:
	}
}

// Wait joins all active runs.
func (m *Manager) Wait() {
	m.wg.Wait()
}
