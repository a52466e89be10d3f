package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts requests by method, route path, and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	// Status is omitted to keep histogram cardinality low.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges the number of requests currently being processed.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// answersTotal tracks how questions were resolved: "catalog" for stored
	// matches, "generated" for pipeline answers, "failed" otherwise.
	answersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_answers_total",
			Help: "Total answered questions by resolution.",
		},
		[]string{"resolution"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, answersTotal)
}

// Metrics returns a Gin middleware instrumenting requests with Prometheus.
// The "path" label uses the registered route (c.FullPath()) to bound label
// cardinality, falling back to the raw URL path when no route matched.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// CountAnswer records the resolution of one answered question.
func CountAnswer(resolution string) {
	answersTotal.WithLabelValues(resolution).Inc()
}
