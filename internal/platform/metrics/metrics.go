// Package metrics holds transport-level Prometheus metrics. Domain packages
// register their own lifecycle metrics next to their services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks HTTP request counts and latency per endpoint.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers transport metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gympass_http_requests_total",
			Help: "HTTP requests, by method and status class.",
		}, []string{"method", "status"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gympass_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(method, status string) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
