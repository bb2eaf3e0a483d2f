// Package metrics exposes Prometheus instrumentation for the SDK's chain
// traffic and caches. Collectors register on the default registry; embedders
// decide whether and how to expose them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chainReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickex_chain_reads_total",
			Help: "Contract read calls by method and status",
		},
		[]string{"method", "status"},
	)

	chainWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickex_chain_writes_total",
			Help: "Submitted transactions by action and status",
		},
		[]string{"action", "status"},
	)

	confirmationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tickex_tx_confirmation_seconds",
			Help:    "Time from submission to confirmed receipt",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"action"},
	)

	cacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickex_cache_invalidations_total",
			Help: "Snapshot cache invalidations by kind",
		},
		[]string{"kind"},
	)
)

// ChainRead records one contract read call.
func ChainRead(method string, err error) {
	chainReads.WithLabelValues(method, status(err)).Inc()
}

// ChainWrite records one submitted transaction outcome.
func ChainWrite(action string, err error) {
	chainWrites.WithLabelValues(action, status(err)).Inc()
}

// Confirmation records the confirmation latency of one transaction.
func Confirmation(action string, d time.Duration) {
	confirmationSeconds.WithLabelValues(action).Observe(d.Seconds())
}

// CacheInvalidation records one snapshot invalidation.
func CacheInvalidation(kind string) {
	cacheInvalidations.WithLabelValues(kind).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
