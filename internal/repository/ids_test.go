package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMalformedIDsReadAsMissingRows(t *testing.T) {
	ctx := context.Background()
	for _, id := range []string{"", "T1", "not-a-uuid", "123"} {
		_, err := NewRepairTicketRepository(nil).GetByID(ctx, id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, "ticket %q", id)

		_, err = NewAppointmentRepository(nil).GetByID(ctx, id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, "appointment %q", id)

		_, err = NewCustomerRepository(nil).GetByID(ctx, id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, "customer %q", id)

		_, err = NewStaffRepository(nil).GetByID(ctx, id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, "staff %q", id)

		exists, err := NewCustomerRepository(nil).Exists(ctx, id)
		require.NoError(t, err)
		assert.False(t, exists)
	}
}

func TestCheckIDAcceptsUUIDs(t *testing.T) {
	assert.NoError(t, checkID("7b0b8f7e-4c8a-4a53-9f51-2d8c1e6b2a10"))
}
