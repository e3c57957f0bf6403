// Package metrics exposes Prometheus counters for mutation outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forumflow_mutations_total",
			Help: "Total number of mutation commands by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	mutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forumflow_mutation_duration_seconds",
			Help:    "Mutation duration from tentative apply to settle",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	bulkItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forumflow_bulk_items_total",
			Help: "Total number of bulk moderation items by verb and outcome",
		},
		[]string{"verb", "outcome"},
	)
)

// ObserveMutation records a settled (or rejected) mutation.
func ObserveMutation(kind, outcome string, elapsed time.Duration) {
	mutationsTotal.WithLabelValues(kind, outcome).Inc()
	mutationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveBulkItem records one item of a bulk moderation batch.
func ObserveBulkItem(verb, outcome string) {
	bulkItemsTotal.WithLabelValues(verb, outcome).Inc()
}
