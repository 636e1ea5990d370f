package dto

import (
	"time"

	"github.com/spec-kit/repair-shop/internal/domain"
)

// AuditEntryResponse is one line of an entity's history.
type AuditEntryResponse struct {
	ID        string             `json:"id"`
	ActorID   string             `json:"actor_id"`
	Action    domain.AuditAction `json:"action"`
	Details   map[string]any     `json:"details"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewAuditEntryResponses maps entries in recorded order.
func NewAuditEntryResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, AuditEntryResponse{
			ID:        entry.ID,
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			Details:   entry.Details,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}
