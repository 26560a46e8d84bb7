// Package metrics provides Prometheus metrics for the MTG price tracker.
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
			Name: "mtg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mtg_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Scryfall API Metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_scryfall_requests_total",
			Help: "Total number of Scryfall API requests",
		},
		[]string{"endpoint", "result"}, // endpoint: "card", "search"; result: "ok", "not_found", "error"
	)

	CatalogRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtg_scryfall_request_duration_seconds",
			Help:    "Scryfall API call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	// Price Cache Metrics
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtg_price_cache_lookups_total",
			Help: "Price cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "stale", "corrupt"
	)

	// Snapshot Metrics
	SnapshotRowsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtg_snapshot_rows_written_total",
			Help: "Total number of price snapshot rows upserted",
		},
	)

	SnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtg_snapshot_duration_seconds",
			Help:    "Time taken to record a daily price snapshot",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	// Collection Metrics
	CollectionValueUSD = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mtg_collection_value_usd",
			Help: "Total value of the collection in USD by pricing mode",
		},
		[]string{"mode"}, // "live", "snapshot"
	)

	CollectionPositions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtg_collection_positions",
			Help: "Number of owned positions in the collection file",
		},
	)
)
