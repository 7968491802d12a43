package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Outcomes *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_jobs_outcomes_total",
			Help: "Background job executions by kind and outcome",
		}, []string{"kind", "outcome"}), // outcome: "done", "retry", "dead"
		Duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warden_jobs_duration_seconds",
			Help:    "Background job handler duration by kind",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
	}
}

func (m *Metrics) incOutcome(kind, outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) observeDuration(kind string, d time.Duration) {
	if m != nil {
		m.Duration.WithLabelValues(kind).Observe(d.Seconds())
	}
}
