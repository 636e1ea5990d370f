package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "repair_shop"

// Metrics exposes Prometheus collectors for HTTP traffic and the orchestrators.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec

	assignments   *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	cascadeSteps  *prometheus.CounterVec
	cascadeRows   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP errors by stable error code",
		}, []string{"path", "method", "code"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "changes_total",
			Help:      "Committed assignment changes by classification",
		}, []string{"entity_kind", "classification"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "status_changes_total",
			Help:      "Committed status changes",
		}, []string{"entity_kind", "from", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "rejections_total",
			Help:      "Mutations rejected before touching storage",
		}, []string{"entity_kind", "code"}),
		cascadeSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cascade",
			Name:      "steps_total",
			Help:      "Customer deletion steps by outcome",
		}, []string{"step", "status"}),
		cascadeRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cascade",
			Name:      "rows_deleted_total",
			Help:      "Rows removed by customer deletion steps",
		}, []string{"step"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "dispatched_total",
			Help:      "Notification dispatch attempts by kind and outcome",
		}, []string{"kind", "status"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.errors,
		m.assignments,
		m.statusChanges,
		m.rejections,
		m.cascadeSteps,
		m.cascadeRows,
		m.notifications,
	)
	return m
}

// Registry returns the registry to serve on /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordAssignment counts a committed assignee change.
func (m *Metrics) RecordAssignment(entityKind, classification string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(entityKind, classification).Inc()
}

// RecordStatusChange counts a committed status change.
func (m *Metrics) RecordStatusChange(entityKind, from, to string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(entityKind, from, to).Inc()
}

// RecordRejection counts a guard or validation rejection.
func (m *Metrics) RecordRejection(entityKind, code string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(entityKind, code).Inc()
}

// RecordCascadeStep counts one attempted deletion step.
func (m *Metrics) RecordCascadeStep(step, status string, rows int64) {
	if m == nil {
		return
	}
	m.cascadeSteps.WithLabelValues(step, status).Inc()
	if rows > 0 {
		m.cascadeRows.WithLabelValues(step).Add(float64(rows))
	}
}

// RecordNotification counts a dispatch attempt.
func (m *Metrics) RecordNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, status).Inc()
}
