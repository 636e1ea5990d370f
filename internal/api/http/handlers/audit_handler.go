package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-shop/internal/api/dto"
	"github.com/spec-kit/repair-shop/internal/domain"
)

// AuditHistory reads the audit trail.
type AuditHistory interface {
	History(ctx context.Context, kind domain.EntityKind, entityID string, limit int) ([]domain.AuditEntry, error)
}

// AuditHandler serves per-entity history.
type AuditHandler struct {
	audit AuditHistory
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit AuditHistory) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// TicketHistory handles GET /api/tickets/:id/history.
func (h *AuditHandler) TicketHistory(c *fiber.Ctx) error {
	return h.history(c, domain.EntityTicket)
}

// AppointmentHistory handles GET /api/appointments/:id/history.
func (h *AuditHandler) AppointmentHistory(c *fiber.Ctx) error {
	return h.history(c, domain.EntityAppointment)
}

func (h *AuditHandler) history(c *fiber.Ctx, kind domain.EntityKind) error {
	entries, err := h.audit.History(c.UserContext(), kind, c.Params("id"), parseIntQuery(c, "limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditEntryResponses(entries)})
}
