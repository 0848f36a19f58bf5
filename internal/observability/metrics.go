package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreWrites counts local store writes by key and outcome.
	StoreWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribble_store_writes_total",
		Help: "Total number of local store writes",
	}, []string{"key", "outcome"})

	// StoreWriteLatency records how long a full-collection write takes.
	StoreWriteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scribble_store_write_latency_seconds",
		Help:    "Local store write latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})

	// StoreCorruption counts stored values that failed to decode and were
	// replaced by an empty collection.
	StoreCorruption = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribble_store_corruption_total",
		Help: "Total number of unreadable stored values",
	}, []string{"key"})

	// RemoteFetchErrors counts failed remote feed requests by endpoint.
	RemoteFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribble_remote_fetch_errors_total",
		Help: "Total number of failed remote feed requests",
	}, []string{"endpoint"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribble_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// TrackStoreWrite returns a function that records write latency when called (e.g. defer).
func TrackStoreWrite(backend string) func() {
	start := time.Now()
	return func() {
		StoreWriteLatency.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	}
}
