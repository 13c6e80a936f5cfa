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
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)

	// PlannerMutations counts guarded writes; result is ok, rejected or error.
	PlannerMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_mutations_total",
			Help: "Planner write operations by outcome",
		},
		[]string{"op", "result"},
	)

	UploadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_uploaded_bytes_total",
			Help: "Bytes stored for task detail attachments",
		},
	)

	DuplicateRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_duplicate_requests_total",
			Help: "Mutating requests rejected because their X-Request-ID was already handled",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		PlannerMutations,
		UploadedBytes,
		DuplicateRequests,
	)
}

// MetricsMiddleware labels by route template so ids in paths do not explode
// the series count. Unrouted requests share one label.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
