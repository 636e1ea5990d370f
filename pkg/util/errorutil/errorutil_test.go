package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidTransitionNamesBothStates(t *testing.T) {
	err := NewInvalidTransition("ticket", "cancelled", "in_progress")

	de := ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, CodeInvalidTransition, de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "cancelled", de.Details["current"])
	assert.Equal(t, "in_progress", de.Details["requested"])
	assert.Contains(t, de.Message, "cancelled")
	assert.Contains(t, de.Message, "in_progress")
}

func TestGuardViolationDetails(t *testing.T) {
	err := NewGuardViolation("ticket", "reassign", "completed", map[string]any{"attempted_assignee": "tech-A"})

	assert.True(t, IsCode(err, CodeGuardViolation))
	de := ToDomainError(err)
	assert.Equal(t, "reassign", de.Details["action"])
	assert.Equal(t, "completed", de.Details["current"])
	assert.Equal(t, "tech-A", de.Details["attempted_assignee"])
}

func TestStorageErrorKeepsSQLState(t *testing.T) {
	cause := &pgconn.PgError{Code: "23503", ConstraintName: "repair_tickets_appointment_id_fkey"}
	err := NewStorageError("delete appointments", fmt.Errorf("exec: %w", cause))

	de := ToDomainError(err)
	assert.Equal(t, CodeStorage, de.Code)
	assert.Equal(t, "23503", de.Details["sqlstate"])
	assert.Equal(t, "repair_tickets_appointment_id_fkey", de.Details["constraint"])
	assert.ErrorIs(t, err, cause)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(fmt.Errorf("load: %w", pgx.ErrNoRows))
	assert.Equal(t, CodeNotFound, de.Code)

	de = ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, de.Code)
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestIsCodeIgnoresPlainErrors(t *testing.T) {
	assert.False(t, IsCode(errors.New("x"), CodeNotFound))
	assert.True(t, IsCode(fmt.Errorf("wrapped: %w", NewNotFound("ticket", nil)), CodeNotFound))
}
