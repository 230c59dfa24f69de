package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics exposes request-level instruments.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers and returns the HTTP instruments.
func NewHTTPMetrics() *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_http_requests_total",
			Help: "HTTP requests processed, labelled by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tally_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	prometheus.MustRegister(m.requests, m.duration)
	return m
}

// Observe records one completed request.
func (m *HTTPMetrics) Observe(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	route = strings.TrimSpace(route)
	if route == "" {
		route = "unknown"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// GinMiddleware records metrics for each request.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.Observe(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// ResolverMetrics counts rate resolution outcomes by source tier.
type ResolverMetrics struct {
	resolutions *prometheus.CounterVec
	misses      prometheus.Counter
}

func NewResolverMetrics() *ResolverMetrics {
	m := &ResolverMetrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_rate_resolutions_total",
			Help: "Rate resolutions, labelled by winning scope.",
		}, []string{"source"}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tally_rate_resolution_misses_total",
			Help: "Resolutions that found no default rate.",
		}),
	}
	prometheus.MustRegister(m.resolutions, m.misses)
	return m
}

func (m *ResolverMetrics) Resolved(source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(strings.ToLower(source)).Inc()
}

func (m *ResolverMetrics) Missed() {
	if m == nil {
		return
	}
	m.misses.Inc()
}
