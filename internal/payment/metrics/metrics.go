package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions  *prometheus.CounterVec
	AMLReports *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_payment_decisions_total",
			Help: "Payment gate decisions by payment type and status",
		}, []string{"type", "status"}),
		AMLReports: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_payment_aml_reports_total",
			Help: "AML report enqueue outcomes",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncDecision(paymentType, status string) {
	if m != nil {
		m.Decisions.WithLabelValues(paymentType, status).Inc()
	}
}

func (m *Metrics) IncAMLReport(result string) {
	if m != nil {
		m.AMLReports.WithLabelValues(result).Inc()
	}
}
