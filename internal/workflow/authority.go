// Package workflow holds the fixed transition tables and reassignment guards.
// Nothing in here performs I/O.
package workflow

import (
	"strings"

	"github.com/spec-kit/repair-shop/internal/domain"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

// TicketTransitions lists the statuses reachable from each ticket status.
var TicketTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress: {domain.TicketStatusOnHold, domain.TicketStatusCompleted, domain.TicketStatusCancelled},
	domain.TicketStatusOnHold:     {domain.TicketStatusInProgress, domain.TicketStatusCompleted, domain.TicketStatusCancelled},
	domain.TicketStatusCompleted:  {domain.TicketStatusOnHold},
	domain.TicketStatusCancelled:  {},
}

// AppointmentTransitions follows the booking workflow forward only.
var AppointmentTransitions = map[domain.AppointmentStatus][]domain.AppointmentStatus{
	domain.AppointmentStatusScheduled: {
		domain.AppointmentStatusConfirmed,
		domain.AppointmentStatusCompleted,
		domain.AppointmentStatusCancelled,
		domain.AppointmentStatusNoShow,
	},
	domain.AppointmentStatusConfirmed: {
		domain.AppointmentStatusCompleted,
		domain.AppointmentStatusCancelled,
		domain.AppointmentStatusNoShow,
	},
	domain.AppointmentStatusCompleted: {},
	domain.AppointmentStatusCancelled: {},
	domain.AppointmentStatusNoShow:    {},
}

// Authority answers guard questions for the orchestrators.
type Authority struct{}

// NewAuthority returns the stateless authority.
func NewAuthority() Authority {
	return Authority{}
}

// CanChangeTicketStatus reports whether requested is reachable from current.
func (Authority) CanChangeTicketStatus(current, requested domain.TicketStatus) bool {
	return contains(TicketTransitions[current], requested)
}

// CanChangeAppointmentStatus reports whether requested is reachable from current.
func (Authority) CanChangeAppointmentStatus(current, requested domain.AppointmentStatus) bool {
	return contains(AppointmentTransitions[current], requested)
}

// CanChangeStatus dispatches on entity kind using raw status values.
func (a Authority) CanChangeStatus(kind domain.EntityKind, current, requested string) bool {
	switch kind {
	case domain.EntityTicket:
		return a.CanChangeTicketStatus(domain.TicketStatus(current), domain.TicketStatus(requested))
	case domain.EntityAppointment:
		return a.CanChangeAppointmentStatus(domain.AppointmentStatus(current), domain.AppointmentStatus(requested))
	default:
		return false
	}
}

// IsKnownStatus reports whether status belongs to the kind's state set.
func (Authority) IsKnownStatus(kind domain.EntityKind, status string) bool {
	switch kind {
	case domain.EntityTicket:
		_, ok := TicketTransitions[domain.TicketStatus(status)]
		return ok
	case domain.EntityAppointment:
		_, ok := AppointmentTransitions[domain.AppointmentStatus(status)]
		return ok
	default:
		return false
	}
}

// CanReassignTicket is false once the ticket is completed or cancelled.
func (Authority) CanReassignTicket(ticket *domain.RepairTicket) bool {
	return ticket != nil && !ticket.Status.Terminal()
}

// CanReassignAppointment is false once converted, cancelled or marked no-show.
func (Authority) CanReassignAppointment(appt *domain.Appointment) bool {
	if appt == nil || appt.Converted() {
		return false
	}
	return appt.Status != domain.AppointmentStatusCancelled && appt.Status != domain.AppointmentStatusNoShow
}

// CanDeleteAppointment shares the reassignment lock rule.
func (a Authority) CanDeleteAppointment(appt *domain.Appointment) bool {
	return a.CanReassignAppointment(appt)
}

// RequiresReason is true for on_hold and cancelled.
func (Authority) RequiresReason(requested string) bool {
	return requested == string(domain.TicketStatusOnHold) || requested == string(domain.TicketStatusCancelled)
}

// CheckStatusChange returns InvalidTransition or MissingReason, or nil when the change may proceed.
func (a Authority) CheckStatusChange(kind domain.EntityKind, current, requested, reason string) error {
	if !a.CanChangeStatus(kind, current, requested) {
		return apperrors.NewInvalidTransition(string(kind), current, requested)
	}
	if a.RequiresReason(requested) && strings.TrimSpace(reason) == "" {
		return apperrors.NewMissingReason(requested)
	}
	return nil
}

// CheckTicketReassign returns GuardViolation when the ticket is locked.
func (a Authority) CheckTicketReassign(ticket *domain.RepairTicket, attempted *string) error {
	if a.CanReassignTicket(ticket) {
		return nil
	}
	return apperrors.NewGuardViolation(string(domain.EntityTicket), "reassign", string(ticket.Status), attemptedDetails(ticket.ID, attempted))
}

// CheckAppointmentReassign returns GuardViolation when the appointment is locked.
func (a Authority) CheckAppointmentReassign(appt *domain.Appointment, attempted *string) error {
	if a.CanReassignAppointment(appt) {
		return nil
	}
	return apperrors.NewGuardViolation(string(domain.EntityAppointment), "reassign", appointmentState(appt), attemptedDetails(appt.ID, attempted))
}

// CheckAppointmentDelete returns GuardViolation when the appointment may not be removed.
func (a Authority) CheckAppointmentDelete(appt *domain.Appointment) error {
	if a.CanDeleteAppointment(appt) {
		return nil
	}
	return apperrors.NewGuardViolation(string(domain.EntityAppointment), "delete", appointmentState(appt), map[string]any{"id": appt.ID})
}

func appointmentState(appt *domain.Appointment) string {
	if appt.Converted() {
		return "converted"
	}
	return string(appt.Status)
}

func attemptedDetails(id string, attempted *string) map[string]any {
	details := map[string]any{"id": id}
	if attempted != nil {
		details["attempted_assignee"] = *attempted
	} else {
		details["attempted_assignee"] = nil
	}
	return details
}

func contains[T comparable](list []T, v T) bool {
	for _, candidate := range list {
		if candidate == v {
			return true
		}
	}
	return false
}
