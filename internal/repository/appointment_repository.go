package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-shop/internal/domain"
)

// Updatable appointment columns.
const (
	AppointmentColumnAssignee           = "assignee_staff_id"
	AppointmentColumnStatus             = "status"
	AppointmentColumnCancellationReason = "cancellation_reason"
)

var appointmentUpdatable = map[string]bool{
	AppointmentColumnAssignee:           true,
	AppointmentColumnStatus:             true,
	AppointmentColumnCancellationReason: true,
}

// AppointmentRepository encapsulates appointment persistence.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	UpdateFields(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	const query = `
        SELECT id, customer_id, assignee_staff_id, status, scheduled_at, converted_to_ticket_id,
               cancellation_reason, created_at, updated_at
        FROM appointments WHERE id=$1`
	var appt domain.Appointment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.CustomerID,
		&appt.AssigneeID,
		&appt.Status,
		&appt.ScheduledAt,
		&appt.ConvertedToTicketID,
		&appt.CancellationReason,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) UpdateFields(ctx context.Context, id string, fields Fields) error {
	query, args, err := buildUpdate(string(domain.TableAppointments), appointmentUpdatable, id, fields)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an unconverted appointment. The converted check is repeated in SQL.
func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM appointments WHERE id=$1 AND converted_to_ticket_id IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
