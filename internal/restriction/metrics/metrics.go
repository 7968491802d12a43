package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Changes    *prometheus.CounterVec
	ScopeLoads *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Changes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_restriction_changes_total",
			Help: "Restriction lifecycle changes by kind and restriction type",
		}, []string{"change", "type"}),
		ScopeLoads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_restriction_cache_lookups_total",
			Help: "Restriction scope lookups by cache result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncChange(change, restrictionType string) {
	if m != nil {
		m.Changes.WithLabelValues(change, restrictionType).Inc()
	}
}

func (m *Metrics) IncCache(result string) {
	if m != nil {
		m.ScopeLoads.WithLabelValues(result).Inc()
	}
}
