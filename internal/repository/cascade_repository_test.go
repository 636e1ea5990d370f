package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-shop/internal/domain"
)

func TestBuildDeleteViaTickets(t *testing.T) {
	query, args, err := buildDelete(domain.TableTimeEntries, domain.RecordFilter{
		Column:     "ticket_id",
		CustomerID: "c-1",
		ViaTickets: true,
	})
	require.NoError(t, err)

	assert.Contains(t, query, "DELETE FROM time_entries")
	assert.Contains(t, query, "ticket_id IN (SELECT id FROM repair_tickets WHERE customer_id = $1)")
	assert.Equal(t, []any{"c-1"}, args)
}

func TestBuildCountWithNarrowing(t *testing.T) {
	after := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	query, args, err := buildCount(domain.TableAppointments, domain.RecordFilter{
		Column:         "customer_id",
		CustomerID:     "c-1",
		Statuses:       []string{"scheduled", "confirmed"},
		ScheduledAfter: &after,
	})
	require.NoError(t, err)

	assert.Contains(t, query, "SELECT COUNT(*) FROM appointments")
	assert.Contains(t, query, "customer_id = $1")
	assert.Contains(t, query, "status IN ($2, $3)")
	assert.Contains(t, query, "scheduled_at >= $4")
	assert.Equal(t, []any{"c-1", "scheduled", "confirmed", after}, args)
}

func TestBuildSampleCommentsScopedToCustomer(t *testing.T) {
	query, args, err := buildSample(domain.TableComments, domain.RecordFilter{
		Column:     "entity_id",
		CustomerID: "c-1",
		EntityType: "customer",
	}, 3)
	require.NoError(t, err)

	assert.Contains(t, query, "FROM comments")
	assert.Contains(t, query, "entity_id = $1")
	assert.Contains(t, query, "entity_type = $2")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []any{"c-1", "customer", 3}, args)
}

func TestCascadeTargetRejectsUnknownTable(t *testing.T) {
	_, _, err := buildDelete(domain.Table("staff_members"), domain.RecordFilter{Column: "id", CustomerID: "c-1"})
	require.Error(t, err)

	_, _, err = buildDelete(domain.TableCustomers, domain.RecordFilter{Column: "id"})
	require.Error(t, err)
}
