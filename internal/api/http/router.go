package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/daviddurazo/buho-soporte-digital/internal/api/http/handlers"
	"github.com/daviddurazo/buho-soporte-digital/internal/auth"
	"github.com/daviddurazo/buho-soporte-digital/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Triage         *handlers.TriageHandler
	Reports        *handlers.ReportsHandler
	AdminUsers     *handlers.AdminUsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/me", cfg.Users.Me)
	authProtected.Post("/password/change", cfg.Users.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/attachments", cfg.Tickets.AddAttachment)

	// Creators may close their own resolved tickets, so the status route sits
	// outside the triage group. The service enforces the per-role rules.
	tickets.Patch("/:id/status", cfg.Triage.UpdateStatus)

	triage := tickets.Group("", auth.RequireTriage())
	triage.Post("/:id/claim", cfg.Triage.ClaimTicket)
	triage.Patch("/:id/assign", cfg.Triage.AssignTicket)
	triage.Patch("/:id/priority", cfg.Triage.UpdatePriority)
	triage.Post("/bulk/status", cfg.Triage.BulkUpdateStatus)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireTriage())
	reports.Get("/summary", cfg.Reports.Summary)
	reports.Get("/export", cfg.Reports.Export)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.AdminUsers.ListUsers)
	admin.Patch("/users/:id/role", cfg.AdminUsers.UpdateRole)
	admin.Post("/users/:id/deactivate", cfg.AdminUsers.Deactivate)
}
