package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Core request/hit/miss counters
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ims_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"category"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ims_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"category", "tier"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ims_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"category"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ims_cache_errors_total",
			Help: "Total number of cache store errors",
		},
		[]string{"tier", "reason"},
	)

	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ims_retry_attempts_total",
			Help: "Total number of request retries by triggering status",
		},
		[]string{"status"},
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ims_token_refreshes_total",
			Help: "Total number of token refresh attempts",
		},
		[]string{"outcome"},
	)

	APIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ims_api_errors_total",
			Help: "Total number of classified API errors",
		},
		[]string{"error_type"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ims_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// RecordCacheRequest records a cache lookup
func RecordCacheRequest(category string) {
	CacheRequests.WithLabelValues(category).Inc()
}

// RecordCacheHit records a cache hit at the given tier
func RecordCacheHit(category, tier string) {
	CacheHits.WithLabelValues(category, tier).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(category string) {
	CacheMisses.WithLabelValues(category).Inc()
}

// RecordCacheError records a store-level failure
func RecordCacheError(tier, reason string) {
	CacheErrors.WithLabelValues(tier, reason).Inc()
}

// RecordRetry records a retry triggered by the given status code
func RecordRetry(status string) {
	RetryAttempts.WithLabelValues(status).Inc()
}

// RecordTokenRefresh records a refresh attempt outcome ("success"/"failure")
func RecordTokenRefresh(outcome string) {
	TokenRefreshes.WithLabelValues(outcome).Inc()
}

// RecordAPIError records a classified error
func RecordAPIError(errorType string) {
	APIErrors.WithLabelValues(errorType).Inc()
}
