package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SignalLatency tracks per-endpoint handling time.
	SignalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signalpulse_api_duration_seconds",
			Help:    "API endpoint handling time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// ResponseCacheHits counts response cache hits and misses.
	ResponseCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalpulse_response_cache_total",
			Help: "Response cache lookups by outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	registerOnce sync.Once
)

// Register registers API metrics with the default registry. Safe to
// call from every handler constructor.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SignalLatency, ResponseCacheHits)
	})
}
