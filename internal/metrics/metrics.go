// Package metrics exposes Prometheus instrumentation for the fight worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fightworker"

var (
	// MatchesProcessed counts matches that completed the full pipeline.
	MatchesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_processed_total",
		Help:      "Matches processed successfully end to end",
	})

	// MatchesFailed counts jobs that returned an error to the queue layer.
	MatchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_failed_total",
		Help:      "Match jobs that failed and were handed back for retry",
	})

	// EngagementsDetected counts engagements prior to classification.
	EngagementsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engagements_detected_total",
		Help:      "Engagements detected across all processed matches",
	})

	// FightsDetected counts engagements that classified as fights.
	FightsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fights_detected_total",
		Help:      "Fights detected across all processed matches",
	})

	// TelemetryBytes counts raw (decompressed) telemetry bytes processed.
	TelemetryBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_bytes_total",
		Help:      "Raw telemetry bytes decoded",
	})

	// TelemetryCacheHits / Misses track S3 cache effectiveness.
	TelemetryCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_cache_hits_total",
		Help:      "Telemetry documents served from the S3 cache",
	})
	TelemetryCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_cache_misses_total",
		Help:      "Telemetry documents fetched from the CDN",
	})

	// ProcessingDuration observes end-to-end job latency per stage outcome.
	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "match_processing_seconds",
		Help:      "End-to-end match processing latency",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)

// ObserveProcessing records one completed job's latency.
func ObserveProcessing(started time.Time) {
	ProcessingDuration.Observe(time.Since(started).Seconds())
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer builds the /metrics HTTP server for the given address. The
// caller owns startup and shutdown.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
