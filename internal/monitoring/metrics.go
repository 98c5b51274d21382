package monitoring

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Token query results
const (
	QueryResultFound = "found"
	QueryResultEmpty = "empty"
	QueryResultError = "error"
)

// MetricsCollector owns the service's Prometheus registry
type MetricsCollector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	tokensIssued         prometheus.Counter
	tokenQueries         *prometheus.CounterVec
	activeTokensReturned prometheus.Histogram

	storageOperationDuration *prometheus.HistogramVec
	storageOperationErrors   *prometheus.CounterVec
}

func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		registry: prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketbooth_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketbooth_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5},
			},
			[]string{"method", "endpoint"},
		),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketbooth_tokens_issued_total",
			Help: "Total number of tokens minted",
		}),
		tokenQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketbooth_token_queries_total",
				Help: "Total number of active token queries",
			},
			[]string{"result"},
		),
		activeTokensReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticketbooth_active_tokens_returned",
			Help:    "Number of active tokens returned per query",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		storageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketbooth_storage_operation_duration_seconds",
				Help:    "Storage operation duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"driver", "operation"},
		),
		storageOperationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketbooth_storage_operation_errors_total",
				Help: "Total number of failed storage operations",
			},
			[]string{"driver", "operation"},
		),
	}

	mc.registry.MustRegister(
		mc.httpRequestsTotal,
		mc.httpRequestDuration,
		mc.tokensIssued,
		mc.tokenQueries,
		mc.activeTokensReturned,
		mc.storageOperationDuration,
		mc.storageOperationErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return mc
}

// Registry exposes the registry for tests and additional collectors.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// RegisterDBStats exports connection pool statistics for db.
func (mc *MetricsCollector) RegisterDBStats(db *sql.DB) error {
	return mc.registry.Register(collectors.NewDBStatsCollector(db, "ticketbooth"))
}

func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func (mc *MetricsCollector) HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		mc.httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		mc.httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (mc *MetricsCollector) RecordTokenIssued() {
	mc.tokensIssued.Inc()
}

// RecordTokenQuery records the outcome of an active token lookup. count is
// ignored when err is non-nil.
func (mc *MetricsCollector) RecordTokenQuery(count int, err error) {
	switch {
	case err != nil:
		mc.tokenQueries.WithLabelValues(QueryResultError).Inc()
		return
	case count == 0:
		mc.tokenQueries.WithLabelValues(QueryResultEmpty).Inc()
	default:
		mc.tokenQueries.WithLabelValues(QueryResultFound).Inc()
	}
	mc.activeTokensReturned.Observe(float64(count))
}

func (mc *MetricsCollector) RecordStorageOperation(driver, operation string, duration time.Duration, err error) {
	mc.storageOperationDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		mc.storageOperationErrors.WithLabelValues(driver, operation).Inc()
	}
}
