package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics
var Registry = prometheus.NewRegistry()

var (
	// stageDuration is the time spent in one submission stage
	stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "will",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of transaction submission stages",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms ~ 102s
	}, []string{"stage", "circuit"}) // stage: build/prove/balance/submit

	// submissions counts finished submissions
	submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "will",
		Subsystem: "pipeline",
		Name:      "submissions_total",
		Help:      "Total number of contract call submissions",
	}, []string{"circuit", "outcome"}) // outcome: finalized, failed or an error code

	// keyCache counts key material cache lookups
	keyCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "will",
		Subsystem: "zkconfig",
		Name:      "cache_lookups_total",
		Help:      "Key material cache lookups",
	}, []string{"kind", "result"}) // kind: ir/full, result: hit/miss

	// dustBalance is the last observed available DUST in specks
	dustBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "will",
		Subsystem: "wallet",
		Name:      "dust_available_specks",
		Help:      "Available DUST balance in specks",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		stageDuration,
		submissions,
		keyCache,
		dustBalance,
	)
}

// ObserveStage records the duration of a pipeline stage
func ObserveStage(stage, circuit string, d time.Duration) {
	stageDuration.WithLabelValues(stage, circuit).Observe(d.Seconds())
}

// CountSubmission records a finished submission
func CountSubmission(circuit, outcome string) {
	submissions.WithLabelValues(circuit, outcome).Inc()
}

// CacheLookup records a key material cache hit or miss
func CacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	keyCache.WithLabelValues(kind, result).Inc()
}

// SetDustBalance records the available DUST balance
func SetDustBalance(specks uint64) {
	dustBalance.Set(float64(specks))
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
