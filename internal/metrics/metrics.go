// Package metrics holds the Prometheus collectors of a document session.
//
// Collectors are registered on the registerer passed to New, so every
// session (and every test) can use its own registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reactidoc"

// Metrics is the set of engine collectors.
type Metrics struct {
	// Recomputations counts evaluations of state-variable definitions.
	Recomputations prometheus.Counter
	// Invalidations counts slots moved from fresh to stale.
	Invalidations prometheus.Counter
	// Cycles counts dependency cycles detected during reads.
	Cycles prometheus.Counter
	// Expansions counts replacement groups created, by construct kind.
	Expansions *prometheus.CounterVec
	// Samples counts random draws committed by the variant sampler.
	Samples prometheus.Counter
	// Actions counts dispatched actions by name and outcome.
	Actions *prometheus.CounterVec
	// ActionDuration measures the time to fully process an action.
	ActionDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg. A nil reg gives
// unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Recomputations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "recomputations_total",
			Help:      "Total state-variable definition evaluations",
		}),
		Invalidations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "invalidations_total",
			Help:      "Total state variables marked stale",
		}),
		Cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycles_total",
			Help:      "Total dependency cycles detected",
		}),
		Expansions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expand",
			Name:      "groups_created_total",
			Help:      "Total replacement groups instantiated",
		}, []string{"kind"}),
		Samples: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "variant",
			Name:      "samples_total",
			Help:      "Total random selections committed",
		}),
		Actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "actions_total",
			Help:      "Total actions dispatched",
		}, []string{"action", "status"}),
		ActionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "action_duration_seconds",
			Help:      "Time to fully resolve an action",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// Discard returns collectors that are not registered anywhere.
func Discard() *Metrics {
	return New(nil)
}
