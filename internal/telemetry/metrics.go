// Package telemetry registers the Prometheus metrics exposed on /metrics.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTPRequestsTotal counts handled requests by method, route pattern, and status.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes request latency in seconds by route pattern.
	HTTPRequestDuration *prometheus.HistogramVec

	// SessionsIssued counts successful logins and refresh rotations.
	SessionsIssued prometheus.Counter

	// UploadsFailed counts object-store uploads that did not complete.
	UploadsFailed prometheus.Counter
)

// Init registers metrics with the default registry (idempotent).
func Init() {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vidtube_http_requests_total",
			Help: "Number of HTTP requests handled",
		}, []string{"method", "route", "status"})
		HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vidtube_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})
		SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
			Name: "vidtube_sessions_issued_total",
			Help: "Number of access/refresh token pairs issued",
		})
		UploadsFailed = promauto.NewCounter(prometheus.CounterOpts{
			Name: "vidtube_uploads_failed_total",
			Help: "Number of failed object-store uploads",
		})
	})
}
