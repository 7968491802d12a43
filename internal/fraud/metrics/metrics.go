package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Scores         *prometheus.HistogramVec
	Flags          *prometheus.CounterVec
	DetectorErrors *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Scores: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warden_fraud_risk_score",
			Help:    "Capped fraud risk scores by recommended action",
			Buckets: []float64{0, 25, 50, 80, 100},
		}, []string{"recommendation"}),
		Flags: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_fraud_flags_total",
			Help: "Fraud flags raised, by flag",
		}, []string{"flag"}),
		DetectorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_fraud_detector_errors_total",
			Help: "Anomaly detector failures; the signal is dropped",
		}, []string{"detector"}),
	}
}

func (m *Metrics) ObserveScore(score int, recommendation string) {
	if m != nil {
		m.Scores.WithLabelValues(recommendation).Observe(float64(score))
	}
}

func (m *Metrics) IncFlag(flag string) {
	if m != nil {
		m.Flags.WithLabelValues(flag).Inc()
	}
}

func (m *Metrics) IncDetectorError(detector string) {
	if m != nil {
		m.DetectorErrors.WithLabelValues(detector).Inc()
	}
}
