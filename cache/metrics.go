package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache traffic per view.
type Metrics struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Invalidations prometheus.Counter
	StoreErrors   *prometheus.CounterVec
}

// NewMetrics creates the cache collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "objfs",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache hits by view.",
		}, []string{"view"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "objfs",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache misses by view.",
		}, []string{"view"}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "objfs",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Identifiers invalidated after mutations.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "objfs",
			Subsystem: "cache",
			Name:      "store_errors_total",
			Help:      "Failed store operations by operation.",
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Invalidations, m.StoreErrors)
	}
	return m
}

func viewLabel(p Prefix) string {
	switch p {
	case PrefixPartial:
		return "partial"
	case PrefixList:
		return "list"
	case PrefixListRecursive:
		return "list_recursive"
	default:
		return "full"
	}
}
