// Package metrics provides the centralized Prometheus metrics registry for
// the TIDAL client. All metrics are defined in their respective packages
// (request, pagination) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/request):
//   - tidal_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - tidal_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - tidal_token_refreshes_total{result} (Counter): Access token refresh attempts by result (success, failure)
//
// Pagination Metrics (pkg/pagination):
//   - tidal_pages_fetched_total (Counter): Paginated pages fetched
//   - tidal_collections_fetched_total (Counter): Full-collection fetches completed
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   sum(rate(tidal_requests_total{status=~"4..|5.."}[5m])) /
//   sum(rate(tidal_requests_total[5m]))
//
//   # Token Refresh Failures
//   rate(tidal_token_refreshes_total{result="failure"}[15m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(tidal_request_duration_seconds_bucket[5m]))
//
//   # Average Pages per Collection
//   rate(tidal_pages_fetched_total[5m]) / rate(tidal_collections_fetched_total[5m])
