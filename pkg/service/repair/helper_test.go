// Copyright (C) 2017 ScyllaDB

package repair

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/schedule"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
	"go.uber.org/atomic"
)

func testTableID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func testTable(n int) TableReference {
	return TableReference{
		ID:       testTableID(n),
		Keyspace: "ks",
		Table:    fmt.Sprintf("t%d", n),
	}
}

func testConfiguration() Configuration {
	c := DefaultConfiguration()
	c.Interval = time.Hour
	c.Parallelism = 2
	return c
}

func testConfig() Config {
	c := DefaultConfig()
	c.GracefulStopTimeout = time.Second
	c.FaultTimeout = 100 * time.Millisecond
	c.StateFailureThreshold = 2
	c.Backoff.RandomizationFactor = 0
	return c
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeStateFactory returns states of tables with ranges of the given ages.
type fakeStateFactory struct {
	clock *fakeClock

	mu   sync.Mutex
	ages map[uuid.UUID][]time.Duration
	errs map[uuid.UUID]error
}

func (f *fakeStateFactory) setAges(table TableReference, ages ...time.Duration) {
	f.mu.Lock()
	f.ages[table.ID] = ages
	f.mu.Unlock()
}

func (f *fakeStateFactory) setErr(table TableReference, err error) {
	f.mu.Lock()
	f.errs[table.ID] = err
	f.mu.Unlock()
}

func (f *fakeStateFactory) NewStateSource(table TableReference, c Configuration) StateSource {
	return fakeStateSource(func(ctx context.Context) (State, error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if err := f.errs[table.ID]; err != nil {
			return State{}, err
		}
		now := f.clock.Now()
		s := State{FetchedAt: now, HistoryFrom: now.Add(-c.HistoryWindow())}
		for i, a := range f.ages[table.ID] {
			s.Ranges = append(s.Ranges, RangeState{
				TokenRange: TokenRange{
					StartToken: int64(i * 10),
					EndToken:   int64(i*10 + 10),
					Replicas:   []string{"192.168.100.11", "192.168.100.12"},
				},
				RepairedAt: now.Add(-a),
			})
		}
		return s, nil
	})
}

type fakeStateSource func(ctx context.Context) (State, error)

func (f fakeStateSource) State(ctx context.Context) (State, error) {
	return f(ctx)
}

type repairCall struct {
	Table  TableReference
	Ranges []TokenRange
}

type fakeExecutor struct {
	mu       sync.Mutex
	calls    []repairCall
	repairFn func(ctx context.Context, table TableReference) error
	repairs  map[uuid.UUID]int
	active   map[uuid.UUID]int
	overlaps *atomic.Int64
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		repairs:  make(map[uuid.UUID]int),
		active:   make(map[uuid.UUID]int),
		overlaps: atomic.NewInt64(0),
	}
}

func (f *fakeExecutor) Repair(ctx context.Context, table TableReference, ranges []TokenRange, c Configuration) error {
	f.mu.Lock()
	f.calls = append(f.calls, repairCall{Table: table, Ranges: ranges})
	f.repairs[table.ID]++
	f.active[table.ID]++
	if f.active[table.ID] > 1 {
		f.overlaps.Inc()
	}
	fn := f.repairFn
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active[table.ID]--
		f.mu.Unlock()
	}()

	if fn != nil {
		return fn(ctx, table)
	}
	return nil
}

func (f *fakeExecutor) setRepairFn(fn func(ctx context.Context, table TableReference) error) {
	f.mu.Lock()
	f.repairFn = fn
	f.mu.Unlock()
}

// repairCount returns the number of steps run for the table.
func (f *fakeExecutor) repairCount(table TableReference) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repairs[table.ID]
}

func (f *fakeExecutor) getCalls() []repairCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repairCall(nil), f.calls...)
}

type fakeFaults struct {
	mu     sync.Mutex
	faults []Fault
	block  chan struct{}
}

func (f *fakeFaults) ReportFault(ctx context.Context, fault Fault) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return
		}
	}
	f.mu.Lock()
	f.faults = append(f.faults, fault)
	f.mu.Unlock()
}

func (f *fakeFaults) get(kind FaultKind) []FaultLevel {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []FaultLevel
	for _, fault := range f.faults {
		if fault.Kind == kind {
			out = append(out, fault.Level)
		}
	}
	return out
}

type fakeMetrics struct {
	success *atomic.Int64
	failure *atomic.Int64
}

func (f fakeMetrics) ObserveStep(keyspace, table string, ranges int, d time.Duration, success bool) {
	if success {
		f.success.Inc()
	} else {
		f.failure.Inc()
	}
}

func (f fakeMetrics) SetState(keyspace, table string, repairedRatio float64, age time.Duration) {
}

func (f fakeMetrics) DeleteTable(keyspace, table string) {
}

// fakeScheduleManager keeps registered jobs, tests drive them manually.
type fakeScheduleManager struct {
	mu          sync.Mutex
	last        schedule.Handle
	jobs        map[schedule.Handle]schedule.Job
	registers   int
	deregisters int
	wakeups     int
}

func (f *fakeScheduleManager) Register(j schedule.Job) schedule.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last++
	f.jobs[f.last] = j
	f.registers++
	return f.last
}

func (f *fakeScheduleManager) Deregister(h schedule.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[h]; ok {
		f.deregisters++
	}
	delete(f.jobs, h)
}

func (f *fakeScheduleManager) Wakeup() {
	f.mu.Lock()
	f.wakeups++
	f.mu.Unlock()
}

// events returns the number of register, deregister and wakeup calls.
func (f *fakeScheduleManager) events() (registers, deregisters, wakeups int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registers, f.deregisters, f.wakeups
}

func (f *fakeScheduleManager) registered() []*TableRepairJob {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*TableRepairJob
	for _, j := range f.jobs {
		out = append(out, j.(*TableRepairJob))
	}
	return out
}

type schedulerHarness struct {
	ctx       context.Context
	clock     *fakeClock
	states    *fakeStateFactory
	executor  *fakeExecutor
	faults    *fakeFaults
	metrics   fakeMetrics
	manager   *fakeScheduleManager
	scheduler *Scheduler
}

func newSchedulerHarness(t *testing.T) *schedulerHarness {
	return newSchedulerHarnessWithConfig(t, testConfig())
}

func newSchedulerHarnessWithConfig(t *testing.T, config Config) *schedulerHarness {
	t.Helper()

	clock := newFakeClock()
	h := &schedulerHarness{
		ctx:   context.Background(),
		clock: clock,
		states: &fakeStateFactory{
			clock: clock,
			ages:  make(map[uuid.UUID][]time.Duration),
			errs:  make(map[uuid.UUID]error),
		},
		executor: newFakeExecutor(),
		faults:   &fakeFaults{},
		metrics:  fakeMetrics{success: atomic.NewInt64(0), failure: atomic.NewInt64(0)},
		manager:  &fakeScheduleManager{jobs: make(map[schedule.Handle]schedule.Job)},
	}

	s, err := NewScheduler(config, h.states, h.executor, h.faults, h.metrics, h.manager, log.NewDevelopment())
	if err != nil {
		t.Fatal(err)
	}
	s.setNow(clock.Now)
	s.Open()
	h.scheduler = s

	t.Cleanup(func() {
		s.Close()
		s.Wait()
	})
	return h
}

// job returns the only registered job.
func (h *schedulerHarness) job(t *testing.T) *TableRepairJob {
	t.Helper()

	jobs := h.manager.registered()
	if len(jobs) != 1 {
		t.Fatalf("registered jobs = %d, expected 1", len(jobs))
	}
	return jobs[0]
}

func (h *schedulerHarness) put(t *testing.T, table TableReference, c Configuration) {
	t.Helper()
	if err := h.scheduler.PutConfiguration(h.ctx, table, c); err != nil {
		t.Fatal(err)
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
