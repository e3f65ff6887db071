// Package metrics is the reference for every Prometheus metric the XML API
// client exports. Metrics are defined in their own packages (client, cache,
// batch) and registered via promauto on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatherer collects every client metric; promauto registers them on the
// default registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - xmlapi_requests_total{action, status} (Counter): requests by action and outcome
//     (cache_hit, network_error or the HTTP status code)
//   - xmlapi_request_duration_seconds{action} (Histogram): network fetch duration
//   - xmlapi_errors_total{class} (Counter): errors by class (network, malformed, api)
//   - xmlapi_coalesced_requests_total (Counter): misses served by another in-flight fetch
//
// Cache Metrics (pkg/cache):
//   - xmlapi_cache_hits_total{backend} (Counter): hits by backend (sqlite, redis)
//   - xmlapi_cache_misses_total{backend} (Counter): misses including expired entries
//   - xmlapi_cache_writes_total{backend} (Counter): stored entries
//   - xmlapi_cache_purged_entries_total{backend} (Counter): entries removed by silo purges
//   - xmlapi_cache_swept_entries_total (Counter): expired SQLite rows removed by sweeps
//   - xmlapi_cache_errors_total{backend, operation} (Counter): store failures
//
// Batch Metrics (pkg/batch):
//   - xmlapi_batch_requests_total{outcome} (Counter): batch requests (success, error, skipped)
//   - xmlapi_batch_duration_seconds (Histogram): duration of complete batches
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(xmlapi_cache_hits_total[5m])) /
//   (sum(rate(xmlapi_cache_hits_total[5m])) + sum(rate(xmlapi_cache_misses_total[5m])))
//
//   # API error documents per action
//   rate(xmlapi_errors_total{class="api"}[5m])
//
//   # P95 Fetch Latency
//   histogram_quantile(0.95, rate(xmlapi_request_duration_seconds_bucket[5m]))
