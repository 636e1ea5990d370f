package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordAssignment("ticket", "transfer")
	m.RecordAssignment("ticket", "transfer")
	m.RecordCascadeStep("repair_tickets", "completed", 3)
	m.RecordCascadeStep("customer", "completed", 0)
	m.RecordRequest("/api/tickets/:id/status", "POST", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.assignments.WithLabelValues("ticket", "transfer")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.cascadeRows.WithLabelValues("repair_tickets")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cascadeSteps.WithLabelValues("customer", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/tickets/:id/status", "POST", "200")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAssignment("ticket", "new_assignment")
		m.RecordNotification("assign", "failed")
		m.RecordError("/", "GET", "NOT_FOUND")
	})
	assert.Nil(t, m.Registry())
}
