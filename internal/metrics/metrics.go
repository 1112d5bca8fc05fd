// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

type Metrics struct {
	MigrationAttempts *prometheus.CounterVec
	DiscoveryPolls    *prometheus.CounterVec
	DiscoveryChains   *prometheus.CounterVec
	MergesApplied     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MigrationAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openinventory",
			Subsystem: "migration",
			Name:      "attempts_total",
			Help:      "Mode migration attempts by outcome.",
		}, []string{"outcome"}),
		DiscoveryPolls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openinventory",
			Subsystem: "discovery",
			Name:      "polls_total",
			Help:      "Analysis status polls by reported status.",
		}, []string{"status"}),
		DiscoveryChains: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openinventory",
			Subsystem: "discovery",
			Name:      "chains_total",
			Help:      "Finished reconciliation chains by outcome.",
		}, []string{"outcome"}),
		MergesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "openinventory",
			Subsystem: "discovery",
			Name:      "merges_applied_total",
			Help:      "Discovery results merged into existing products.",
		}),
	}
}

func newDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

var Module = fx.Module("metrics",
	fx.Provide(newDefault),
)
