// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scylla_repair_scheduler"

func gaugeVecCreator(subsystem string) func(help, name string, labels ...string) *prometheus.GaugeVec {
	return func(help, name string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}
}

func counterVecCreator(subsystem string) func(help, name string, labels ...string) *prometheus.CounterVec {
	return func(help, name string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}
}

func summaryVecCreator(subsystem string) func(help, name string, labels ...string) *prometheus.SummaryVec {
	return func(help, name string, labels ...string) *prometheus.SummaryVec {
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Name:       name,
			Help:       help,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, labels)
	}
}

// Values of the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func statusLabel(success bool) string {
	if success {
		return StatusSuccess
	}
	return StatusError
}
