package domain

import "time"

// AppointmentStatus enumerates booking states.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Upcoming reports whether the appointment is still expected to take place.
func (s AppointmentStatus) Upcoming() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// Appointment is a customer booking that may later be converted into a ticket.
type Appointment struct {
	ID                  string
	CustomerID          string
	AssigneeID          *string
	Status              AppointmentStatus
	ScheduledAt         time.Time
	ConvertedToTicketID *string
	CancellationReason  string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Converted reports whether the appointment has already become a repair ticket.
func (a *Appointment) Converted() bool {
	return a.ConvertedToTicketID != nil && *a.ConvertedToTicketID != ""
}
