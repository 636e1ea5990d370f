package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/repository"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

// StaffLister lists staff members that work can be assigned to.
type StaffLister interface {
	List(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error)
}

// StaffHandler serves the assignee picker.
type StaffHandler struct {
	staff StaffLister
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff StaffLister) *StaffHandler {
	return &StaffHandler{staff: staff}
}

type staffResponse struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   domain.StaffRole `json:"role"`
	Active bool             `json:"active"`
}

// ListStaff handles GET /api/staff. Only active members are listed unless
// active=false is passed.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	active := parseBoolQuery(c, "active", true)
	filter := repository.StaffFilter{Active: &active}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.StaffRole(roleStr)
		filter.Role = &role
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	list, err := h.staff.List(c.UserContext(), filter)
	if err != nil {
		return apperrors.NewStorageError("list staff", err)
	}
	resp := make([]staffResponse, 0, len(list))
	for _, member := range list {
		resp = append(resp, staffResponse{
			ID:     member.ID,
			Name:   member.Name,
			Email:  member.Email,
			Role:   member.Role,
			Active: member.Active,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

func parseBoolQuery(c *fiber.Ctx, key string, defaultVal bool) bool {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}
