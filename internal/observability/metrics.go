package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	escalationOutcomes  *prometheus.CounterVec
	tasksScheduled      prometheus.Counter
	tasksProcessed      *prometheus.CounterVec
}

// NewMetrics builds and registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP error responses by error code.",
		}, []string{"method", "path", "code"}),
		escalationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_escalation_outcomes_total",
			Help: "Escalation task outcomes.",
		}, []string{"outcome"}),
		tasksScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_tasks_scheduled_total",
			Help: "Deferred tasks scheduled.",
		}),
		tasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_tasks_processed_total",
			Help: "Claimed tasks by kind and result.",
		}, []string{"kind", "result"}),
	}
	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpErrorsTotal,
		m.escalationOutcomes,
		m.tasksScheduled,
		m.tasksProcessed,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// RecordRequest observes one completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError counts an error response by domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrorsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordEscalationOutcome counts one escalation task result.
func (m *Metrics) RecordEscalationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.escalationOutcomes.WithLabelValues(outcome).Inc()
}

// RecordTaskScheduled counts one deferred task enqueue.
func (m *Metrics) RecordTaskScheduled() {
	if m == nil {
		return
	}
	m.tasksScheduled.Inc()
}

// RecordTaskProcessed counts one claimed task by outcome.
func (m *Metrics) RecordTaskProcessed(kind, result string) {
	if m == nil {
		return
	}
	m.tasksProcessed.WithLabelValues(kind, result).Inc()
}
