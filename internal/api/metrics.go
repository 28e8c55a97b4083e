package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks backend API call latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nexus_api_request_duration_seconds",
			Help: "Duration of backend API requests in seconds",
			Buckets: []float64{
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
				10.0,  // 10s
				30.0,  // 30s
			},
		},
		[]string{"method", "resource", "status"},
	)
)

// recordRequestDuration records one request. status is the HTTP status
// code, or "error" when no response arrived.
func recordRequestDuration(method, resource, status string, seconds float64) {
	RequestDuration.WithLabelValues(method, resource, status).Observe(seconds)
}
