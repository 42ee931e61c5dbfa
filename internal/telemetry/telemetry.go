// Package telemetry exposes prometheus metrics for the HTTP surface and the
// calendar feed pipeline.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jazzy_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jazzy_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	feedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jazzy_feed_fetches_total",
		Help: "Calendar feed requests by source and outcome",
	}, []string{"source", "outcome"})
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, path string, statusCode int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(statusCode),
	}
	requestsTotal.With(labels).Inc()
	requestDuration.With(labels).Observe(duration.Seconds())
}

// RecordFeedFetch records one feed lookup: served from cache, freshly
// fetched, or failed.
func RecordFeedFetch(source string, fromCache, failed bool) {
	outcome := "fetch"
	switch {
	case failed:
		outcome = "error"
	case fromCache:
		outcome = "cache_hit"
	}
	feedFetches.WithLabelValues(source, outcome).Inc()
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
