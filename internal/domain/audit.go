package domain

import "time"

// AuditAction captures what a committed change did.
type AuditAction string

const (
	AuditAssignmentChanged    AuditAction = "assignment_changed"
	AuditStatusChanged        AuditAction = "status_changed"
	AuditAppointmentDeleted   AuditAction = "appointment_deleted"
	AuditCustomerDeleted      AuditAction = "customer_deleted"
	AuditCustomerDeleteFailed AuditAction = "customer_delete_failed"
)

// AuditEntry is an immutable audit trail record.
type AuditEntry struct {
	ID         string
	ActorID    string
	Action     AuditAction
	EntityKind EntityKind
	EntityID   string
	Details    map[string]any
	CreatedAt  time.Time
}
