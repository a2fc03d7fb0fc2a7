// Package metrics provides Prometheus metrics for the portfolio tracker.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pt_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pt_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Quote Metrics
	QuoteFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pt_quote_fetches_total",
			Help: "Quote provider fetches by result",
		},
		[]string{"result"}, // "ok", "unavailable", "error"
	)

	QuoteCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pt_quote_cache_hits_total",
			Help: "Quote cache hit count",
		},
	)

	QuoteCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pt_quote_cache_misses_total",
			Help: "Quote cache miss count",
		},
	)

	QuoteRefreshQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pt_quote_refresh_queue_size",
			Help: "Number of symbols waiting in the urgent refresh queue",
		},
	)

	QuoteBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pt_quote_batch_duration_seconds",
			Help:    "Time taken to refresh a batch of held symbols",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// CSV Import Metrics
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pt_csv_imports_total",
			Help: "CSV import attempts by result",
		},
		[]string{"result"}, // "ok", "malformed", "failed"
	)

	ImportRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pt_csv_import_rows_total",
			Help: "Total holding rows inserted via CSV import",
		},
	)

	// Snapshot Metrics
	SnapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pt_value_snapshots_total",
			Help: "Total portfolio value snapshots recorded",
		},
	)

	HoldingsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pt_holdings_tracked",
			Help: "Number of holding rows across all owners",
		},
	)

	OwnersTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pt_owners_tracked",
			Help: "Number of owners with at least one holding",
		},
	)
)
