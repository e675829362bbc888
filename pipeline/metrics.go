// (c) Siemens AG 2026
//
// SPDX-License-Identifier: MIT

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments analysis stages. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	durations *prometheus.HistogramVec
	failures  *prometheus.CounterVec
}

// NewMetrics returns stage metrics registered with the specified registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "whaletopo",
			Name:      "stage_duration_seconds",
			Help:      "Duration of topology analysis stages.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "whaletopo",
			Name:      "stage_failures_total",
			Help:      "Number of failed topology analysis stages.",
		}, []string{"stage"}),
	}
	reg.MustRegister(m.durations, m.failures)
	return m
}

func (m *Metrics) observe(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.durations.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) failed(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}
