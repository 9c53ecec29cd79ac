// Package metrics exposes the Prometheus collectors of the games API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var factory = promauto.With(prometheus.DefaultRegisterer)

// HTTP traffic, labelled by the normalised route rather than the raw path.
var (
	HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests served, by method, route and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Time to serve a request, by method and route.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2.5, 11),
	}, []string{"method", "path"})

	ActiveConnections = factory.NewGauge(prometheus.GaugeOpts{
		Name: "active_connections",
		Help: "Requests currently in flight.",
	})
)

// Store and cache.
var (
	DBQueryDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Game store operation latency, by driver and operation.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"driver", "operation"})

	CacheHitsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Game lookups answered by the cache.",
	})

	CacheMissesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Game lookups that fell through to the store.",
	})
)

// Business counters.
var (
	GamesCreatedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "games_created_total",
		Help: "Games accepted by POST /api/games.",
	})

	GamesDeletedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "games_deleted_total",
		Help: "Games removed by DELETE /api/games/{id}.",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest counts one served request and observes its latency.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordCacheHit counts a lookup answered by the cache.
func RecordCacheHit() { CacheHitsTotal.Inc() }

// RecordCacheMiss counts a lookup that went to the store.
func RecordCacheMiss() { CacheMissesTotal.Inc() }

// RecordGameCreated counts a stored game.
func RecordGameCreated() { GamesCreatedTotal.Inc() }

// RecordGameDeleted counts a removed game.
func RecordGameDeleted() { GamesDeletedTotal.Inc() }

// RecordDBQuery observes one store operation.
func RecordDBQuery(driver, operation string, elapsed time.Duration) {
	DBQueryDuration.WithLabelValues(driver, operation).Observe(elapsed.Seconds())
}

// ObserveDBQuery starts timing a store operation; call the result when it ends.
//
//	defer metrics.ObserveDBQuery("mongo", "find")()
func ObserveDBQuery(driver, operation string) func() {
	start := time.Now()
	return func() { RecordDBQuery(driver, operation, time.Since(start)) }
}
