package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains Prometheus instrumentation for limiters. One Metrics
// instance can be shared by any number of limiters; series are labeled by
// limiter name.
type Metrics struct {
	admissions *prometheus.CounterVec
	waitTime   *prometheus.HistogramVec
	waiting    *prometheus.GaugeVec
}

// NewMetrics creates limiter metrics registered against reg. Passing nil
// registers against the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		admissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quell_admissions_total",
				Help: "Total number of admission decisions, by outcome",
			},
			[]string{"limiter", "outcome"},
		),

		waitTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quell_admission_wait_seconds",
				Help:    "Computed admission wait durations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~32s
			},
			[]string{"limiter"},
		),

		waiting: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quell_waiting_callers",
				Help: "Number of callers currently sleeping on an admission wait",
			},
			[]string{"limiter"},
		),
	}

	reg.MustRegister(m.admissions, m.waitTime, m.waiting)
	return m
}

// recordAdmission records one resolved admission decision.
func (m *Metrics) recordAdmission(limiter string, wait time.Duration, outcome Outcome) {
	m.admissions.WithLabelValues(limiter, string(outcome)).Inc()
	if wait > 0 {
		m.waitTime.WithLabelValues(limiter).Observe(wait.Seconds())
	}
}
