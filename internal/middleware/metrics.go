package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/telemetry"
)

// Metrics records per-request counters and latency histograms. Routes are
// labelled by chi pattern so path parameters do not explode cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(wrapped, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		if telemetry.HTTPRequestsTotal != nil {
			telemetry.HTTPRequestsTotal.
				WithLabelValues(r.Method, route, strconv.Itoa(wrapped.Status())).
				Inc()
		}
		if telemetry.HTTPRequestDuration != nil {
			telemetry.HTTPRequestDuration.
				WithLabelValues(r.Method, route).
				Observe(time.Since(start).Seconds())
		}
	})
}
