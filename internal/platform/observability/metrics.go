// Package observability holds the process-wide Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector holds all Prometheus metrics for the service.
// Uses a custom registry, no global state.
type MetricsCollector struct {
	Registry *prometheus.Registry

	// HTTP surface metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Task dispatch metrics.
	TaskDeliveriesTotal    *prometheus.CounterVec
	TaskRetriesTotal       *prometheus.CounterVec
	TaskTerminalFailsTotal *prometheus.CounterVec

	// Authorization metrics.
	AccessDecisionsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a MetricsCollector with all metrics registered
// on a custom prometheus.Registry.
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()

	m := &MetricsCollector{
		Registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meridian",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "path", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meridian",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		TaskDeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meridian",
			Subsystem: "tasks",
			Name:      "deliveries_total",
			Help:      "Total task deliveries by outcome.",
		}, []string{"task", "outcome"}),

		TaskRetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meridian",
			Subsystem: "tasks",
			Name:      "retries_total",
			Help:      "Total task redeliveries after transient failures.",
		}, []string{"task"}),

		TaskTerminalFailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meridian",
			Subsystem: "tasks",
			Name:      "terminal_failures_total",
			Help:      "Total task deliveries dropped as unretryable.",
		}, []string{"task"}),

		AccessDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meridian",
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Total authorization decisions by outcome.",
		}, []string{"resource_type", "access", "allowed"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TaskDeliveriesTotal,
		m.TaskRetriesTotal,
		m.TaskTerminalFailsTotal,
		m.AccessDecisionsTotal,
	)

	return m
}

// DeliveryStarted implements the task dispatcher's observer hook.
func (m *MetricsCollector) DeliveryStarted(taskName string) {
	m.TaskDeliveriesTotal.WithLabelValues(taskName, "started").Inc()
}

func (m *MetricsCollector) DeliverySucceeded(taskName string) {
	m.TaskDeliveriesTotal.WithLabelValues(taskName, "succeeded").Inc()
}

func (m *MetricsCollector) DeliveryRetried(taskName string) {
	m.TaskRetriesTotal.WithLabelValues(taskName).Inc()
}

func (m *MetricsCollector) DeliveryFailedTerminal(taskName string) {
	m.TaskTerminalFailsTotal.WithLabelValues(taskName).Inc()
}
