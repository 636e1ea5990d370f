package dto

// ChangeStatusRequest asks for a status transition. Whether the status is
// valid for the entity is decided by the workflow rules, not here.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,max=32"`
	Reason string `json:"reason" validate:"max=500"`
}

// DeleteTicketRequest is the optional body of a ticket delete.
type DeleteTicketRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
