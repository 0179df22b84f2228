package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream usage API Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keymeter",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream usage lookups",
		},
		[]string{"outcome"}, // "success", "rejected", "rate_limited", "upstream_error", "unreachable", "protocol_error"
	)

	UpstreamRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "keymeter",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream usage lookup duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers Prometheus upstream metrics. Must be called once from main.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	upstreamMetricsRegistered = true
}
