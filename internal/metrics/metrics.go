package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	SourceLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "source_loads_total",
		Help:      "Total channel source loads by source name and result status.",
	}, []string{"source", "status"})

	SourceLoadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "source_load_duration_seconds",
		Help:      "Channel source load duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"source"})

	SourceAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "catalog",
		Name:      "source_available",
		Help:      "Whether a source is available (1) or blocked by circuit breaker (0).",
	}, []string{"source"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "cache_hits_total",
		Help:      "Total number of catalog cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "cache_misses_total",
		Help:      "Total number of catalog cache misses.",
	})

	ChannelsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "catalog",
		Name:      "channels_total",
		Help:      "Number of channels in the catalog after the last refresh.",
	})

	DuplicatesRemovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "duplicates_removed_total",
		Help:      "Total duplicate channels removed across all refreshes.",
	})

	HDUpgradesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "hd_upgrades_total",
		Help:      "Total duplicate conflicts resolved by upgrading to an HD record.",
	})

	ChannelsFilteredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "channels_filtered_total",
		Help:      "Total channels removed by the content filter, by category.",
	}, []string{"category"})

	DedupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "dedup_duration_seconds",
		Help:      "Deduplication pass duration in seconds.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		SourceLoadsTotal,
		SourceLoadDuration,
		SourceAvailable,
		CacheHitsTotal,
		CacheMissesTotal,
		ChannelsTotal,
		DuplicatesRemovedTotal,
		HDUpgradesTotal,
		ChannelsFilteredTotal,
		DedupDuration,
	)
}
