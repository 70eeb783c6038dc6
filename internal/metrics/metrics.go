// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	registerOnce sync.Once

	resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "library_catalog",
		Name:      "resolutions_total",
		Help:      "Total number of identifier resolutions by outcome",
	}, []string{"outcome"})
	resolutionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "library_catalog",
		Name:      "resolution_duration_seconds",
		Help:      "Histogram of resolution durations in seconds by outcome",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // ~5ms up to ~20s
	}, []string{"outcome"})
	providerLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "library_catalog",
		Name:      "provider_lookups_total",
		Help:      "Total number of provider lookups by provider and result (hit/miss)",
	}, []string{"provider", "result"})
	fetchRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "library_catalog",
		Name:      "fetch_retries_total",
		Help:      "Total number of HTTP retries by error kind",
	}, []string{"kind"})
	cacheOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "library_catalog",
		Name:      "cache_operations_total",
		Help:      "Total number of cache operations by operation and result",
	}, []string{"op", "result"})

	cacheEntriesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "library_catalog",
		Name:      "cache_entries",
		Help:      "Number of metadata entries in the persistent cache at last stats scan",
	})
	cacheBytesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "library_catalog",
		Name:      "cache_size_bytes",
		Help:      "Approximate size of the persistent cache at last stats scan",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(resolutions, resolutionDuration, providerLookups, fetchRetries, cacheOperations,
			cacheEntriesGauge, cacheBytesGauge)
	})
}

// Resolution helpers
func IncResolution(outcome string) { resolutions.WithLabelValues(outcome).Inc() }
func ObserveResolutionDuration(outcome string, d time.Duration) {
	resolutionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Provider and transport
func IncProviderLookup(provider, result string) { providerLookups.WithLabelValues(provider, result).Inc() }
func IncFetchRetry(kind string)                { fetchRetries.WithLabelValues(kind).Inc() }

// ProviderLookupCount returns the current provider lookup counter value.
func ProviderLookupCount(provider, result string) float64 {
	var m dto.Metric
	if err := providerLookups.WithLabelValues(provider, result).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Cache
func IncCacheOperation(op, result string) { cacheOperations.WithLabelValues(op, result).Inc() }
func SetCacheEntries(n int)              { cacheEntriesGauge.Set(float64(n)) }
func SetCacheBytes(n int64)              { cacheBytesGauge.Set(float64(n)) }
