package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers geolocation resolution.
type Metrics struct {
	Lookups          *prometheus.CounterVec
	LookupDuration   prometheus.Histogram
	CollaboratorErrs *prometheus.CounterVec
	BreakerOpen      prometheus.Gauge
	PersistDropped   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_geo_lookups_total",
			Help: "Geolocation resolutions by outcome",
		}, []string{"outcome"}), // outcome: cache_hit, shared_hit, resolved, degraded
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "warden_geo_collaborator_duration_seconds",
			Help:    "Duration of the parallel geolocation and threat lookups",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CollaboratorErrs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_geo_collaborator_errors_total",
			Help: "Collaborator failures by collaborator and category",
		}, []string{"collaborator", "category"}),
		BreakerOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "warden_geo_circuit_open",
			Help: "1 while the geolocation circuit breaker is open",
		}),
		PersistDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warden_geo_persist_dropped_total",
			Help: "Resolved records not persisted because the background buffer was full",
		}),
	}
}

func (m *Metrics) IncLookup(outcome string) {
	if m != nil {
		m.Lookups.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveLookup(d time.Duration) {
	if m != nil {
		m.LookupDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncCollaboratorError(collaborator, category string) {
	if m != nil {
		m.CollaboratorErrs.WithLabelValues(collaborator, category).Inc()
	}
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}

func (m *Metrics) IncPersistDropped() {
	if m != nil {
		m.PersistDropped.Inc()
	}
}
