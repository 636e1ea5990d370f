package dto

import "github.com/spec-kit/repair-shop/internal/domain"

// ReassignRequest sets or clears the assignee. A null or empty assignee_id unassigns.
type ReassignRequest struct {
	AssigneeID *string `json:"assignee_id" validate:"omitempty,max=64"`
}

// AssignmentResponse describes the committed change.
type AssignmentResponse struct {
	EntityKind       domain.EntityKind     `json:"entity_kind"`
	EntityID         string                `json:"entity_id"`
	Classification   domain.AssignmentKind `json:"classification"`
	PreviousAssignee *string               `json:"previous_assignee"`
	NewAssignee      *string               `json:"new_assignee"`
}

// NewAssignmentResponse maps an assignment event.
func NewAssignmentResponse(event domain.AssignmentEvent) AssignmentResponse {
	return AssignmentResponse{
		EntityKind:       event.EntityKind,
		EntityID:         event.EntityID,
		Classification:   event.Kind,
		PreviousAssignee: event.Previous,
		NewAssignee:      event.Next,
	}
}
