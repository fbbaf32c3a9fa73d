package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute is the route label for requests no handler matched, which
// keeps scanner traffic from minting one series per probed path.
const unmatchedRoute = "unmatched"

const metricsNamespace = "snaportho"

var routeLabels = []string{"method", "route"}

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, append(routeLabels, "status"))

	requestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, routeLabels)

	requestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})

	// 256B up to 4MiB.
	responseBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response body size.",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
	}, routeLabels)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestSeconds, requestsInFlight, responseBytes)
}

// Metrics instruments every request except the exact paths in skip, which
// are usually the scrape and health endpoints. The route label is the gin
// route template, never the raw path.
func Metrics(skip ...string) gin.HandlerFunc {
	ignored := make(map[string]bool, len(skip))
	for _, p := range skip {
		ignored[p] = true
	}
	return func(c *gin.Context) {
		if ignored[c.Request.URL.Path] {
			c.Next()
			return
		}
		requestsInFlight.Inc()
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		requestsInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m := c.Request.Method
		requestsTotal.WithLabelValues(m, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestSeconds.WithLabelValues(m, route).Observe(elapsed.Seconds())
		if n := c.Writer.Size(); n >= 0 {
			responseBytes.WithLabelValues(m, route).Observe(float64(n))
		}
	}
}
