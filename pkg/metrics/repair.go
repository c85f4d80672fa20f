// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TableRepairMetrics holds per table repair metrics.
type TableRepairMetrics struct {
	stepDuration  *prometheus.SummaryVec
	ranges        *prometheus.CounterVec
	repairedRatio *prometheus.GaugeVec
	oldestRepair  *prometheus.GaugeVec
}

func NewTableRepairMetrics() TableRepairMetrics {
	g := gaugeVecCreator("repair")
	c := counterVecCreator("repair")
	s := summaryVecCreator("repair")

	return TableRepairMetrics{
		stepDuration: s("Duration of repair steps in seconds.",
			"step_duration_seconds", "keyspace", "table", "status"),
		ranges: c("Total number of token ranges sent to repair parametrized by status.",
			"ranges_total", "keyspace", "table", "status"),
		repairedRatio: g("Fraction of token ranges repaired within the repair interval.",
			"repaired_ratio", "keyspace", "table"),
		oldestRepair: g("Seconds since the least recently repaired token range was repaired.",
			"seconds_since_oldest_repair", "keyspace", "table"),
	}
}

func (m TableRepairMetrics) all() []prometheus.Collector {
	return []prometheus.Collector{
		m.stepDuration,
		m.ranges,
		m.repairedRatio,
		m.oldestRepair,
	}
}

// MustRegister shall be called to make the metrics visible by prometheus client.
func (m TableRepairMetrics) MustRegister() TableRepairMetrics {
	prometheus.MustRegister(m.all()...)
	return m
}

// ObserveStep updates "step_duration_seconds" and "ranges_total".
func (m TableRepairMetrics) ObserveStep(keyspace, table string, ranges int, d time.Duration, success bool) {
	status := statusLabel(success)
	m.stepDuration.WithLabelValues(keyspace, table, status).Observe(d.Seconds())
	m.ranges.WithLabelValues(keyspace, table, status).Add(float64(ranges))
}

// SetState updates "repaired_ratio" and "seconds_since_oldest_repair".
// Age of a table that was never repaired is reported as +Inf.
func (m TableRepairMetrics) SetState(keyspace, table string, repairedRatio float64, age time.Duration) {
	m.repairedRatio.WithLabelValues(keyspace, table).Set(repairedRatio)

	v := age.Seconds()
	if age == time.Duration(math.MaxInt64) {
		v = math.Inf(1)
	}
	m.oldestRepair.WithLabelValues(keyspace, table).Set(v)
}

// DeleteTable removes all metrics of a table.
func (m TableRepairMetrics) DeleteTable(keyspace, table string) {
	l := prometheus.Labels{"keyspace": keyspace, "table": table}
	m.stepDuration.DeletePartialMatch(l)
	m.ranges.DeletePartialMatch(l)
	m.repairedRatio.DeletePartialMatch(l)
	m.oldestRepair.DeletePartialMatch(l)
}
