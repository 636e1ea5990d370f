package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-shop/internal/api/http/handlers"
	"github.com/spec-kit/repair-shop/internal/auth"
	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/observability"
	"github.com/spec-kit/repair-shop/internal/repository"
	apperrors "github.com/spec-kit/repair-shop/pkg/util/errorutil"
)

type noopServices struct{}

func (noopServices) Reassign(_ context.Context, kind domain.EntityKind, id string, _ *string, _ string) (domain.AssignmentEvent, error) {
	return domain.AssignmentEvent{}, apperrors.NewNotFound(string(kind), map[string]any{"id": id})
}

func (noopServices) ChangeStatus(context.Context, domain.EntityKind, string, string, string, string) error {
	return nil
}

func (noopServices) DeleteTicket(context.Context, string, string, string) error { return nil }

func (noopServices) DeleteAppointment(context.Context, string, string) error {
	panic("boom")
}

func (noopServices) Preview(_ context.Context, id string) (domain.DeletionPlan, error) {
	return domain.DeletionPlan{CustomerID: id}, nil
}

func (noopServices) Execute(_ context.Context, id, _ string) (domain.DeletionReport, error) {
	return domain.DeletionReport{CustomerID: id}, nil
}

func (noopServices) History(context.Context, domain.EntityKind, string, int) ([]domain.AuditEntry, error) {
	return nil, nil
}

func (noopServices) List(context.Context, repository.StaffFilter) ([]domain.StaffMember, error) {
	return nil, nil
}

func newRouterApp(role domain.StaffRole) (*fiber.App, *observability.Metrics) {
	metrics := observability.NewMetrics()
	svc := noopServices{}
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:      handlers.NewHealthHandler("repair-shop", "test", nil),
		Assignments: handlers.NewAssignmentHandler(svc),
		Lifecycle:   handlers.NewLifecycleHandler(svc),
		Customers:   handlers.NewCustomersHandler(svc),
		Audit:       handlers.NewAuditHandler(svc),
		Staff:       handlers.NewStaffHandler(svc),
		AuthMiddleware: func(c *fiber.Ctx) error {
			if c.Get("Authorization") == "" {
				return apperrors.NewUnauthorized("missing authorization header")
			}
			auth.SetPrincipal(c, &auth.Principal{SubjectType: domain.SubjectTypeStaff, ActorID: "u-1", Role: role})
			return c.Next()
		},
		Metrics: metrics,
	})
	return app, metrics
}

func call(t *testing.T, app *fiber.App, method, target string, authed bool) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer test")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestRoutesRequireAuthentication(t *testing.T) {
	app, _ := newRouterApp(domain.StaffRoleTechnician)

	status, body := call(t, app, fiber.MethodGet, "/api/staff", false)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeUnauthorized, errorCode(body))

	status, _ = call(t, app, fiber.MethodGet, "/api/staff", true)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestCustomerDeletionIsAdminOnly(t *testing.T) {
	tech, _ := newRouterApp(domain.StaffRoleTechnician)
	status, body := call(t, tech, fiber.MethodDelete, "/api/customers/C1", true)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(body))

	admin, _ := newRouterApp(domain.StaffRoleAdmin)
	status, _ = call(t, admin, fiber.MethodDelete, "/api/customers/C1", true)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, admin, fiber.MethodGet, "/api/customers/C1/deletion-preview", true)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestTicketDeleteNeedsManager(t *testing.T) {
	tech, _ := newRouterApp(domain.StaffRoleTechnician)
	status, _ := call(t, tech, fiber.MethodDelete, "/api/tickets/T1", true)
	assert.Equal(t, fiber.StatusForbidden, status)

	mgr, _ := newRouterApp(domain.StaffRoleManager)
	status, _ = call(t, mgr, fiber.MethodDelete, "/api/tickets/T1", true)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestErrorMiddlewareRendersDomainErrors(t *testing.T) {
	app, _ := newRouterApp(domain.StaffRoleManager)

	req := httptest.NewRequest(fiber.MethodPut, "/api/tickets/T9/assignee", nil)
	req.Header.Set("Authorization", "Bearer test")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	status, body := call(t, app, fiber.MethodGet, "/nope", true)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(body))
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app, _ := newRouterApp(domain.StaffRoleManager)

	status, body := call(t, app, fiber.MethodDelete, "/api/appointments/A1", true)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, errorCode(body))
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newRouterApp(domain.StaffRoleManager)
	_, _ = call(t, app, fiber.MethodGet, "/api/staff", true)

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "repair_shop_http_requests_total")
}
