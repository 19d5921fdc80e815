package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuizzesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quizmaster_quizzes_created_total",
			Help: "Total number of quizzes created",
		},
	)

	AttemptsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizmaster_attempts_finalized_total",
			Help: "Total number of attempts graded, by mode",
		},
		[]string{"mode"},
	)

	GenerationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizmaster_generation_requests_total",
			Help: "Quiz generation requests by provider and result",
		},
		[]string{"provider", "result"},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizmaster_generation_duration_seconds",
			Help:    "Duration of quiz generation calls including retries",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(QuizzesCreated)
	prometheus.MustRegister(AttemptsFinalized)
	prometheus.MustRegister(GenerationRequests)
	prometheus.MustRegister(GenerationDuration)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
