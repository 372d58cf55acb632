package utils

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	registry *prometheus.Registry

	requestCount     prometheus.Counter
	errorCount       prometheus.Counter
	operationLatency *prometheus.HistogramVec
}

func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	mc := &MetricsCollector{
		registry: registry,
		requestCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_requests_total",
			Help: "Total number of HTTP requests handled.",
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_errors_total",
			Help: "Total number of failed requests.",
		}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_operation_duration_seconds",
			Help:    "Latency of lifecycle operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	registry.MustRegister(mc.requestCount, mc.errorCount, mc.operationLatency)
	return mc
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.requestCount.Inc()
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.errorCount.Inc()
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationLatency.WithLabelValues(operationName).Observe(duration.Seconds())
}

// Handler exposes the collected metrics in Prometheus text format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}
