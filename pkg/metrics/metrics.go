// Package metrics holds the admin-level Prometheus metrics and documents
// the full metric catalogue. Upstream metrics live next to the code that
// records them (client, ratelimit) to avoid import cycles.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the admin.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

var (
	// ViewMountsTotal counts settled view fetches by result (loaded, failed, stale).
	ViewMountsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_view_mounts_total",
		Help: "Settled product list fetches by result",
	}, []string{"result"})

	// ViewFetchDuration observes the time from mount to settlement.
	ViewFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "admin_view_fetch_duration_seconds",
		Help:    "Time from view mount until the product list fetch settled",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	// PageRendersTotal counts rendered views by front end and load state.
	PageRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_page_renders_total",
		Help: "Rendered product list views by front end and load state",
	}, []string{"frontend", "state"})

	// HTTPRequestsTotal counts requests served by the admin HTTP server.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_http_requests_total",
		Help: "HTTP requests served by route and status",
	}, []string{"route", "status"})
)

// Handler returns the /metrics handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// View Metrics (pkg/metrics, recorded by pkg/view and the front ends):
//   - admin_view_mounts_total{result} (Counter): Fetch settlements (loaded, failed, stale)
//   - admin_view_fetch_duration_seconds (Histogram): Mount to settlement time
//   - admin_page_renders_total{frontend, state} (Counter): Renders by front end (html, tui) and state
//   - admin_http_requests_total{route, status} (Counter): Admin HTTP server requests
//
// Rate Limit Metrics (pkg/ratelimit):
//   - admin_upstream_rate_limit_remaining (Gauge): Requests left in the upstream quota window
//   - admin_rate_limit_blocks_total (Counter): Requests blocked with an exhausted quota
//   - admin_rate_limit_throttles_total (Counter): Requests delayed with a low quota
//
// Request Metrics (pkg/client):
//   - admin_upstream_requests_total{endpoint, status} (Counter): Products API requests by status
//   - admin_upstream_request_duration_seconds{endpoint} (Histogram): Products API request duration
//   - admin_upstream_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//   - admin_circuit_breaker_state{name} (Gauge): 0=closed, 1=half-open, 2=open
//
// Retry Metrics (pkg/client):
//   - admin_upstream_retries_total{error_class} (Counter): Retry attempts by error class
//   - admin_upstream_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - admin_upstream_retry_exhausted_total{error_class} (Counter): Fetches that exhausted their retries
//
// Example Prometheus Queries:
//
//   # Failed list loads
//   sum(rate(admin_view_mounts_total{result="failed"}[5m])) /
//   sum(rate(admin_view_mounts_total[5m]))
//
//   # Quota running low
//   admin_upstream_rate_limit_remaining < 20
//
//   # Breaker open
//   admin_circuit_breaker_state == 2
//
//   # P95 upstream latency
//   histogram_quantile(0.95, rate(admin_upstream_request_duration_seconds_bucket[5m]))
