package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-shop/internal/api/dto"
	"github.com/spec-kit/repair-shop/internal/domain"
)

// Reassigner applies assignee changes.
type Reassigner interface {
	Reassign(ctx context.Context, kind domain.EntityKind, entityID string, newAssignee *string, actorID string) (domain.AssignmentEvent, error)
}

// AssignmentHandler routes every assignee-mutating request, PUT or PATCH,
// through one Reassigner.
type AssignmentHandler struct {
	assignments Reassigner
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(assignments Reassigner) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// ReassignTicket handles PUT|PATCH /api/tickets/:id/assignee.
func (h *AssignmentHandler) ReassignTicket(c *fiber.Ctx) error {
	return h.reassign(c, domain.EntityTicket)
}

// ReassignAppointment handles PUT|PATCH /api/appointments/:id/assignee.
func (h *AssignmentHandler) ReassignAppointment(c *fiber.Ctx) error {
	return h.reassign(c, domain.EntityAppointment)
}

func (h *AssignmentHandler) reassign(c *fiber.Ctx, kind domain.EntityKind) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.ReassignRequest
	if err := parseBody(c, &req, false); err != nil {
		return err
	}
	event, err := h.assignments.Reassign(c.UserContext(), kind, c.Params("id"), req.AssigneeID, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(event)})
}
