package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-shop/internal/api/dto"
	"github.com/spec-kit/repair-shop/internal/auth"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

func actorID(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.ActorID == "" {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	return principal.ActorID, nil
}

// parseBody decodes and validates a JSON body. An empty body leaves req at its zero value.
func parseBody(c *fiber.Ctx, req any, allowEmpty bool) error {
	if len(c.Body()) == 0 {
		if !allowEmpty {
			return apperrors.NewValidationError("request body required", nil)
		}
	} else if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"cause": err.Error()})
	}
	return dto.Validate(req)
}
