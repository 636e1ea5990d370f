package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-shop/internal/api/dto"
	"github.com/spec-kit/repair-shop/internal/domain"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

// CustomerDeleter previews and executes customer deletion.
type CustomerDeleter interface {
	Preview(ctx context.Context, customerID string) (domain.DeletionPlan, error)
	Execute(ctx context.Context, customerID, actorID string) (domain.DeletionReport, error)
}

// CustomersHandler serves customer deletion.
type CustomersHandler struct {
	cascade CustomerDeleter
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(cascade CustomerDeleter) *CustomersHandler {
	return &CustomersHandler{cascade: cascade}
}

// PreviewDelete handles GET /api/customers/:id/deletion-preview.
func (h *CustomersHandler) PreviewDelete(c *fiber.Ctx) error {
	plan, err := h.cascade.Preview(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDeletionPreviewResponse(plan)})
}

// ExecuteDelete handles DELETE /api/customers/:id. A failed run still returns
// the step report inside the error details.
func (h *CustomersHandler) ExecuteDelete(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	report, err := h.cascade.Execute(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		if len(report.Steps) == 0 {
			return err
		}
		domainErr := apperrors.ToDomainError(err)
		details := make(map[string]any, len(domainErr.Details)+1)
		for k, v := range domainErr.Details {
			details[k] = v
		}
		details["report"] = dto.NewDeletionReportResponse(report)
		return &apperrors.DomainError{
			Code:       domainErr.Code,
			Message:    domainErr.Message,
			HTTPStatus: domainErr.HTTPStatus,
			Details:    details,
			Err:        domainErr.Err,
		}
	}
	return c.JSON(fiber.Map{"data": dto.NewDeletionReportResponse(report)})
}
