package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-shop/internal/domain"
)

func TestBuildUpdateOrdersColumnsAndBumpsUpdatedAt(t *testing.T) {
	query, args, err := buildUpdate("repair_tickets", ticketUpdatable, "T1", Fields{
		TicketColumnStatus:   "on_hold",
		TicketColumnAssignee: "tech-A",
	})
	require.NoError(t, err)

	assert.Contains(t, query, "UPDATE repair_tickets SET")
	assert.Contains(t, query, "updated_at = NOW()")
	assert.Contains(t, query, "WHERE id = $3")
	assert.Equal(t, []any{"tech-A", "on_hold", "T1"}, args)
}

func TestBuildUpdateRejectsUnknownColumns(t *testing.T) {
	_, _, err := buildUpdate("repair_tickets", ticketUpdatable, "T1", Fields{"customer_id": "c-2"})
	assert.Error(t, err)

	_, _, err = buildUpdate("repair_tickets", ticketUpdatable, "T1", Fields{})
	assert.Error(t, err)
}

func TestBuildStaffList(t *testing.T) {
	role := domain.StaffRoleTechnician
	active := true
	query, args := buildStaffList(StaffFilter{Role: &role, Active: &active, Limit: 10, Offset: 20})

	assert.Contains(t, query, "FROM staff_members")
	assert.Contains(t, query, "role = $1")
	assert.Contains(t, query, "active_flag = $2")
	assert.Contains(t, query, "ORDER BY name, id")
	assert.Equal(t, []any{"technician", true, 10, 20}, args)

	query, args = buildStaffList(StaffFilter{})
	assert.NotContains(t, query, "WHERE")
	assert.NotContains(t, query, "OFFSET")
	assert.Equal(t, []any{defaultStaffPageSize}, args)
}
