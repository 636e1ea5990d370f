package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/repair-shop/internal/api/http/handlers"
	"github.com/spec-kit/repair-shop/internal/auth"
	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Assignments    *handlers.AssignmentHandler
	Lifecycle      *handlers.LifecycleHandler
	Customers      *handlers.CustomersHandler
	Audit          *handlers.AuditHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware fiber.Handler
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", cfg.AuthMiddleware, auth.RequireRole())
	managers := auth.RequireRole(domain.StaffRoleManager, domain.StaffRoleAdmin)
	admins := auth.RequireRole(domain.StaffRoleAdmin)

	api.Get("/staff", cfg.Staff.ListStaff)

	tickets := api.Group("/tickets")
	tickets.Put("/:id/assignee", cfg.Assignments.ReassignTicket)
	tickets.Patch("/:id/assignee", cfg.Assignments.ReassignTicket)
	tickets.Post("/:id/status", cfg.Lifecycle.ChangeTicketStatus)
	tickets.Get("/:id/history", cfg.Audit.TicketHistory)
	tickets.Delete("/:id", managers, cfg.Lifecycle.DeleteTicket)

	appointments := api.Group("/appointments")
	appointments.Put("/:id/assignee", cfg.Assignments.ReassignAppointment)
	appointments.Patch("/:id/assignee", cfg.Assignments.ReassignAppointment)
	appointments.Post("/:id/status", cfg.Lifecycle.ChangeAppointmentStatus)
	appointments.Get("/:id/history", cfg.Audit.AppointmentHistory)
	appointments.Delete("/:id", managers, cfg.Lifecycle.DeleteAppointment)

	customers := api.Group("/customers", admins)
	customers.Get("/:id/deletion-preview", cfg.Customers.PreviewDelete)
	customers.Delete("/:id", cfg.Customers.ExecuteDelete)
}
