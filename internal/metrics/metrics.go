// Package metrics exposes prometheus instrumentation for the scheduler
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors tracked by the service.
type Metrics struct {
	// BatchRequests counts scheduling calls by outcome.
	BatchRequests *prometheus.CounterVec

	// BatchSize observes the number of exercises returned per batch.
	BatchSize prometheus.Histogram

	// ScoresRecorded counts submitted trials by mastery score.
	ScoresRecorded *prometheus.CounterVec

	// CacheInvalidations counts explicit score-cache invalidations.
	CacheInvalidations prometheus.Counter
}

// New registers the service collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BatchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_batch_requests_total",
			Help: "Number of exercise batch requests, labeled by outcome.",
		}, []string{"outcome"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_batch_size",
			Help:    "Number of exercises returned per batch.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		ScoresRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_scores_recorded_total",
			Help: "Number of exercise trials recorded, labeled by mastery score.",
		}, []string{"score"}),
		CacheInvalidations: factory.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_cache_invalidations_total",
			Help: "Number of explicit score cache invalidations.",
		}),
	}
}
