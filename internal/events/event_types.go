package events

import (
	"time"

	"github.com/spec-kit/repair-shop/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAssignmentChanged    EventType = EventType(domain.AuditAssignmentChanged)
	EventStatusChanged        EventType = EventType(domain.AuditStatusChanged)
	EventAppointmentDeleted   EventType = EventType(domain.AuditAppointmentDeleted)
	EventCustomerDeleted      EventType = EventType(domain.AuditCustomerDeleted)
	EventCustomerDeleteFailed EventType = EventType(domain.AuditCustomerDeleteFailed)
)

// AllEventTypes lists every type the orchestrators publish.
var AllEventTypes = []EventType{
	EventAssignmentChanged,
	EventStatusChanged,
	EventAppointmentDeleted,
	EventCustomerDeleted,
	EventCustomerDeleteFailed,
}

// Event represents a committed change emitted by services.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	EntityKind domain.EntityKind `json:"entity_kind"`
	EntityID   string            `json:"entity_id"`
	ActorID    string            `json:"actor_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Payload    map[string]any    `json:"payload,omitempty"`
}

// FromAudit turns a stored audit entry into an event.
func FromAudit(entry domain.AuditEntry) Event {
	ts := entry.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Event{
		ID:         entry.ID,
		Type:       EventType(entry.Action),
		EntityKind: entry.EntityKind,
		EntityID:   entry.EntityID,
		ActorID:    entry.ActorID,
		Timestamp:  ts,
		Payload:    entry.Details,
	}
}
