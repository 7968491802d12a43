package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions *prometheus.CounterVec
	Latency   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_access_decisions_total",
			Help: "Access decisions by restriction type and recommended action",
		}, []string{"type", "action"}),
		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "warden_access_decision_duration_seconds",
			Help:    "Time to reach an access decision, including geolocation",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

func (m *Metrics) ObserveDecision(restrictionType, action string, d time.Duration) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(restrictionType, action).Inc()
	m.Latency.Observe(d.Seconds())
}
