// Package metrics registers the Prometheus collectors for retrieval, the
// result cache and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Retrieval outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeUnknown       = "unknown_player"
	OutcomeInvalid       = "invalid_filter"
	OutcomeIntegrity     = "integrity_error"
	OutcomeInternalError = "error"
)

var (
	RetrievalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playersim_retrievals_total",
			Help: "Total number of similar-player retrievals by outcome",
		},
		[]string{"outcome"},
	)

	RetrievalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playersim_retrieval_duration_seconds",
			Help:    "Duration of similar-player retrievals in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playersim_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playersim_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playersim_cache_errors_total",
			Help: "Total number of result cache failures, which are otherwise ignored",
		},
		[]string{"operation"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playersim_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playersim_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DatasetPlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playersim_dataset_players",
			Help: "Number of players in the loaded dataset",
		},
	)
)

// RecordRetrieval records one retrieval and its outcome.
func RecordRetrieval(outcome string, duration time.Duration) {
	RetrievalsTotal.WithLabelValues(outcome).Inc()
	RetrievalDuration.Observe(duration.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordCacheError counts a failed cache get or set.
func RecordCacheError(operation string) {
	CacheErrors.WithLabelValues(operation).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
