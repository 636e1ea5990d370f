package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-shop/internal/domain"
)

// Updatable repair ticket columns.
const (
	TicketColumnAssignee     = "assignee_staff_id"
	TicketColumnStatus       = "status"
	TicketColumnStatusReason = "status_reason"
	TicketColumnCompletedAt  = "completed_at"
)

var ticketUpdatable = map[string]bool{
	TicketColumnAssignee:     true,
	TicketColumnStatus:       true,
	TicketColumnStatusReason: true,
	TicketColumnCompletedAt:  true,
}

// RepairTicketRepository encapsulates ticket persistence.
type RepairTicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.RepairTicket, error)
	UpdateFields(ctx context.Context, id string, fields Fields) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewRepairTicketRepository instantiates repository.
func NewRepairTicketRepository(pool *pgxpool.Pool) RepairTicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.RepairTicket, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	const query = `
        SELECT id, customer_id, appointment_id, device_id, assignee_staff_id, title,
               status, status_reason, created_at, updated_at, completed_at
        FROM repair_tickets WHERE id=$1`
	var ticket domain.RepairTicket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.AppointmentID,
		&ticket.DeviceID,
		&ticket.AssigneeID,
		&ticket.Title,
		&ticket.Status,
		&ticket.StatusReason,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateFields(ctx context.Context, id string, fields Fields) error {
	query, args, err := buildUpdate(string(domain.TableRepairTickets), ticketUpdatable, id, fields)
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
