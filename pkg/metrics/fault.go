// Copyright (C) 2017 ScyllaDB

package metrics

import "github.com/prometheus/client_golang/prometheus"

// FaultMetrics holds current fault levels of tables.
type FaultMetrics struct {
	level *prometheus.GaugeVec
}

func NewFaultMetrics() FaultMetrics {
	g := gaugeVecCreator("fault")

	return FaultMetrics{
		level: g("Current fault level of a table, 0 cleared, 1 warning, 2 error.",
			"level", "keyspace", "table", "kind"),
	}
}

// MustRegister shall be called to make the metrics visible by prometheus client.
func (m FaultMetrics) MustRegister() FaultMetrics {
	prometheus.MustRegister(m.level)
	return m
}

// SetLevel updates "level".
func (m FaultMetrics) SetLevel(keyspace, table, kind string, level int) {
	m.level.WithLabelValues(keyspace, table, kind).Set(float64(level))
}
