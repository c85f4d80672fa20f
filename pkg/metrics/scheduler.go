// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/scylladb/scylla-repair-scheduler/pkg/schedule"
)

// SchedulerMetrics implements schedule.Listener and exposes job runs.
type SchedulerMetrics struct {
	jobs         prometheus.Gauge
	runIndicator *prometheus.GaugeVec
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.SummaryVec
}

var _ schedule.Listener = SchedulerMetrics{}

func NewSchedulerMetrics() SchedulerMetrics {
	g := gaugeVecCreator("scheduler")
	c := counterVecCreator("scheduler")
	s := summaryVecCreator("scheduler")

	return SchedulerMetrics{
		jobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "jobs",
			Help:      "Number of registered jobs.",
		}),
		runIndicator: g("If the job is running the value is 1, 0 otherwise.",
			"run_indicator", "job"),
		runsTotal: c("Total number of job runs parametrized by status.",
			"run_total", "job", "status"),
		runDuration: s("Duration of job runs in seconds.",
			"run_duration_seconds", "status"),
	}
}

func (m SchedulerMetrics) all() []prometheus.Collector {
	return []prometheus.Collector{
		m.jobs,
		m.runIndicator,
		m.runsTotal,
		m.runDuration,
	}
}

// MustRegister shall be called to make the metrics visible by prometheus client.
func (m SchedulerMetrics) MustRegister() SchedulerMetrics {
	prometheus.MustRegister(m.all()...)
	return m
}

func (m SchedulerMetrics) OnRegister(ctx context.Context, j schedule.Job) {
	m.jobs.Inc()
}

func (m SchedulerMetrics) OnDeregister(ctx context.Context, j schedule.Job) {
	m.jobs.Dec()
	m.runIndicator.DeleteLabelValues(j.String())
	m.runsTotal.DeletePartialMatch(prometheus.Labels{"job": j.String()})
}

func (m SchedulerMetrics) OnRunStart(ctx context.Context, j schedule.Job) {
	m.runIndicator.WithLabelValues(j.String()).Set(1)
}

func (m SchedulerMetrics) OnRunSuccess(ctx context.Context, j schedule.Job, d time.Duration) {
	m.endRun(j, d, true)
}

func (m SchedulerMetrics) OnRunError(ctx context.Context, j schedule.Job, d time.Duration, err error) {
	m.endRun(j, d, false)
}

func (m SchedulerMetrics) endRun(j schedule.Job, d time.Duration, success bool) {
	status := statusLabel(success)
	m.runIndicator.WithLabelValues(j.String()).Set(0)
	m.runsTotal.WithLabelValues(j.String(), status).Inc()
	m.runDuration.WithLabelValues(status).Observe(d.Seconds())
}
