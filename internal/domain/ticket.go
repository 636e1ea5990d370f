package domain

import "time"

// TicketStatus enumerates lifecycle states for repair tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusOnHold     TicketStatus = "on_hold"
	TicketStatusCompleted  TicketStatus = "completed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// Terminal reports whether the ticket no longer counts as active work.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCancelled
}

// RepairTicket is the aggregate for a device repair job.
type RepairTicket struct {
	ID            string
	CustomerID    string
	AppointmentID *string
	DeviceID      *string
	AssigneeID    *string
	Title         string
	Status        TicketStatus
	StatusReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}
