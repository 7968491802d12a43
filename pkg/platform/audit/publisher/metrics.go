package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit delivery.
type Metrics struct {
	Emitted      *prometheus.CounterVec
	Retries      prometheus.Counter
	DeadLettered *prometheus.CounterVec
	Replayed     prometheus.Counter
	QueueDepth   prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_audit_events_emitted_total",
			Help: "Total audit events accepted for delivery by category",
		}, []string{"category"}),
		Retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warden_audit_delivery_retries_total",
			Help: "Total audit delivery retries after a failed append",
		}),
		DeadLettered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_audit_dead_lettered_total",
			Help: "Total audit events moved to the dead-letter store by cause",
		}, []string{"cause"}), // cause: "exhausted", "buffer_full"
		Replayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warden_audit_dead_letters_replayed_total",
			Help: "Total dead-lettered audit events successfully redelivered",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "warden_audit_queue_depth",
			Help: "Audit events waiting in the in-process delivery buffer",
		}),
	}
}

func (m *Metrics) incEmitted(category string) {
	if m != nil {
		m.Emitted.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) incRetries() {
	if m != nil {
		m.Retries.Inc()
	}
}

func (m *Metrics) incDeadLettered(cause string) {
	if m != nil {
		m.DeadLettered.WithLabelValues(cause).Inc()
	}
}

func (m *Metrics) incReplayed() {
	if m != nil {
		m.Replayed.Inc()
	}
}

func (m *Metrics) setQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}
