package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated counts successful creates across all tenants.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_created_total",
		Help: "The total number of products created",
	})

	ProductsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_updated_total",
		Help: "The total number of products updated",
	})

	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_deleted_total",
		Help: "The total number of products deleted",
	})

	// CodeCollisions counts generated codes rejected by the conditional put.
	CodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_code_collisions_total",
		Help: "Product codes that collided with an existing item",
	})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_auth_failures_total",
		Help: "Rejected requests by auth failure kind",
	}, []string{"kind"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_store_operation_duration_seconds",
		Help:    "Catalog store round trip latency by operation and outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "outcome"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Cache lookups by cache name and result",
	}, []string{"cache", "result"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_events_published_total",
		Help: "Catalog events sent to the queue by type and outcome",
	}, []string{"type", "outcome"})
)

// CacheHit records a cache lookup result.
func CacheHit(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
