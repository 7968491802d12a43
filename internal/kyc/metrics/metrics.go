package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Initiated  *prometheus.CounterVec
	Decisions  *prometheus.CounterVec
	Processing prometheus.Histogram
	Expired    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Initiated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_kyc_initiated_total",
			Help: "KYC verification requests accepted, by type",
		}, []string{"type"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_kyc_decisions_total",
			Help: "KYC decisions by outcome and by whether a reviewer made them",
		}, []string{"outcome", "source"}),
		Processing: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "warden_kyc_processing_duration_seconds",
			Help:    "Time spent running document, identity and AML checks",
			Buckets: prometheus.DefBuckets,
		}),
		Expired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warden_kyc_expired_total",
			Help: "Unresolved KYC requests expired by the sweep",
		}),
	}
}

func (m *Metrics) IncInitiated(kycType string) {
	if m != nil {
		m.Initiated.WithLabelValues(kycType).Inc()
	}
}

func (m *Metrics) IncDecision(outcome, source string) {
	if m != nil {
		m.Decisions.WithLabelValues(outcome, source).Inc()
	}
}

func (m *Metrics) ObserveProcessing(d time.Duration) {
	if m != nil {
		m.Processing.Observe(d.Seconds())
	}
}

func (m *Metrics) AddExpired(n int) {
	if m != nil {
		m.Expired.Add(float64(n))
	}
}
