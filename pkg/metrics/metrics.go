// Package metrics documents the Prometheus metrics exposed by the Bookeo
// MCP server. All metrics are defined in their owning packages (bookeo,
// ratelimit) via promauto to maintain modularity; this package is the
// reference for operators wiring up the --metrics-addr listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the server.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/bookeo):
//   - bookeo_requests_total{endpoint, status} (Counter): Requests by
//     endpoint path and HTTP status. 429 responses are counted per retry;
//     network failures appear under status="network_error".
//   - bookeo_request_duration_seconds{endpoint} (Histogram): End-to-end
//     call duration by endpoint, rate limit waits included.
//
// Rate Limit Metrics (pkg/ratelimit):
//   - bookeo_rate_limit_waits_total (Counter): 429 responses absorbed by
//     waiting and retrying.
//   - bookeo_rate_limit_wait_seconds (Histogram): Server-advertised wait
//     durations.
//
// Example Prometheus Queries:
//
//   # Request Error Rate (non-2xx excluding rate limits)
//   sum(rate(bookeo_requests_total{status!~"2..|429"}[5m]))
//
//   # Share of requests hitting the rate limit
//   rate(bookeo_rate_limit_waits_total[5m]) /
//   rate(bookeo_requests_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(bookeo_request_duration_seconds_bucket[5m]))
