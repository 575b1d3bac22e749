package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraud_dashboard",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of dashboard API requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5}, // handlers never wait on the scoring service
		},
		[]string{"route", "class"},
	)

	apiRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraud_dashboard",
		Subsystem: "api",
		Name:      "requests_in_flight",
		Help:      "Dashboard API requests currently being served",
	})
)

// Metrics returns Gin middleware recording latency per route and status class.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiRequestsInFlight.Inc()
		defer apiRequestsInFlight.Dec()
		start := time.Now()

		c.Next()

		apiRequestDuration.WithLabelValues(routeLabel(c), statusClass(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}

func routeLabel(c *gin.Context) string {
	if c.FullPath() == "" {
		return "unmatched"
	}
	return c.Request.Method + " " + c.FullPath()
}

// statusClass folds a status code into 2xx..5xx.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
