package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values for the BroBot counters.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"

	WriteOK        = "ok"
	WriteDuplicate = "duplicate"
	WriteError     = "error"
)

var (
	brobotLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snaportho",
			Name:      "brobot_lookups_total",
			Help:      "BroBot cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	// Generation calls are slow (seconds to tens of seconds), so buckets
	// start at 250ms rather than the HTTP defaults.
	brobotGeneration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snaportho",
			Name:      "brobot_generation_seconds",
			Help:      "Latency of calls to the case-prep generation API.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)

	brobotCacheWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snaportho",
			Name:      "brobot_cache_writes_total",
			Help:      "BroBot cache inserts by result (ok, duplicate, error).",
		},
		[]string{"result"},
	)

	deeplinkAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snaportho",
			Name:      "deeplink_attempts_total",
			Help:      "App-open attempts by detected platform and server action.",
		},
		[]string{"platform", "action"},
	)
)

func init() {
	prometheus.MustRegister(brobotLookups, brobotGeneration, brobotCacheWrites, deeplinkAttempts)
}

// ObserveLookup counts one cache lookup.
func ObserveLookup(result string) { brobotLookups.WithLabelValues(result).Inc() }

// ObserveGeneration records one generation call's latency.
func ObserveGeneration(d time.Duration) { brobotGeneration.Observe(d.Seconds()) }

// ObserveCacheWrite counts one cache insert outcome.
func ObserveCacheWrite(result string) { brobotCacheWrites.WithLabelValues(result).Inc() }

// ObserveDeepLink counts one /open request.
func ObserveDeepLink(platform, action string) {
	deeplinkAttempts.WithLabelValues(platform, action).Inc()
}
