package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-shop/internal/api/dto"
	"github.com/spec-kit/repair-shop/internal/domain"
)

// StatusChanger applies status changes and the deletes that map onto them.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, kind domain.EntityKind, entityID, requested, reason, actorID string) error
	DeleteTicket(ctx context.Context, ticketID, reason, actorID string) error
	DeleteAppointment(ctx context.Context, appointmentID, actorID string) error
}

// LifecycleHandler serves status and delete endpoints for tickets and appointments.
type LifecycleHandler struct {
	lifecycle StatusChanger
}

// NewLifecycleHandler constructs handler.
func NewLifecycleHandler(lifecycle StatusChanger) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycle}
}

// ChangeTicketStatus handles POST /api/tickets/:id/status.
func (h *LifecycleHandler) ChangeTicketStatus(c *fiber.Ctx) error {
	return h.changeStatus(c, domain.EntityTicket)
}

// ChangeAppointmentStatus handles POST /api/appointments/:id/status.
func (h *LifecycleHandler) ChangeAppointmentStatus(c *fiber.Ctx) error {
	return h.changeStatus(c, domain.EntityAppointment)
}

func (h *LifecycleHandler) changeStatus(c *fiber.Ctx, kind domain.EntityKind) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := parseBody(c, &req, false); err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.lifecycle.ChangeStatus(c.UserContext(), kind, id, req.Status, req.Reason, actor); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"entity_kind": kind,
		"entity_id":   id,
		"status":      req.Status,
	}})
}

// DeleteTicket handles DELETE /api/tickets/:id. The ticket is cancelled, not removed.
func (h *LifecycleHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.DeleteTicketRequest
	if err := parseBody(c, &req, true); err != nil {
		return err
	}
	if err := h.lifecycle.DeleteTicket(c.UserContext(), c.Params("id"), req.Reason, actor); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAppointment handles DELETE /api/appointments/:id.
func (h *LifecycleHandler) DeleteAppointment(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.lifecycle.DeleteAppointment(c.UserContext(), c.Params("id"), actor); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
