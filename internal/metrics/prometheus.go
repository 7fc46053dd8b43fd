package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion engine

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportseed_api_calls_total",
			Help: "Total number of source API calls",
		},
		[]string{"host", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportseed_api_call_duration_seconds",
			Help:    "Duration of source API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"host"},
	)

	// Upsert metrics
	RecordsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportseed_records_inserted_total",
			Help: "Total number of records inserted per table",
		},
		[]string{"table"},
	)

	RecordsUpdated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportseed_records_updated_total",
			Help: "Total number of records updated per table",
		},
		[]string{"table"},
	)

	RecordErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportseed_record_errors_total",
			Help: "Total number of per-record reconcile failures per table",
		},
		[]string{"table"},
	)

	// Seed run metrics
	SeedRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportseed_seed_runs_total",
			Help: "Total number of seed runs",
		},
		[]string{"dataset", "status"},
	)

	SeedRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportseed_seed_run_duration_seconds",
			Help:    "Duration of seed runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"dataset"},
	)

	LastSuccessfulSeed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportseed_last_successful_seed_timestamp",
			Help: "Timestamp of last successful seed run",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportseed_cache_hits_total",
			Help: "Total number of payload cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportseed_cache_misses_total",
			Help: "Total number of payload cache misses",
		},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportseed_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(host, status string, duration float64) {
	APICallsTotal.WithLabelValues(host, status).Inc()
	APICallDuration.WithLabelValues(host).Observe(duration)
}

// RecordUpserts records the terminal-state counts of one reconcile run
func RecordUpserts(table string, inserted, updated, errored int) {
	RecordsInserted.WithLabelValues(table).Add(float64(inserted))
	RecordsUpdated.WithLabelValues(table).Add(float64(updated))
	RecordErrors.WithLabelValues(table).Add(float64(errored))
}

// RecordSeedRun records a seed run outcome
func RecordSeedRun(dataset, status string, duration float64) {
	SeedRunsTotal.WithLabelValues(dataset, status).Inc()
	SeedRunDuration.WithLabelValues(dataset).Observe(duration)

	if status == "success" {
		LastSuccessfulSeed.SetToCurrentTime()
	}
}

// RecordCacheHit records a payload cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a payload cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}
