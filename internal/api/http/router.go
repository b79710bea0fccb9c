package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	SLA            *handlers.SLAHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api")

	api.Get("/categories", cfg.Tickets.ListCategories)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.AuthMiddleware.Optional, cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.AuthMiddleware.Handle, cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.AuthMiddleware.Handle, cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.AuthMiddleware.Handle, cfg.Tickets.AddMessage)
	tickets.Post("/:id/feedback", cfg.AuthMiddleware.Optional, cfg.Tickets.SubmitFeedback)
	tickets.Patch("/:id/status", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Tickets.UpdateStatus)
	tickets.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Tickets.DeleteTicket)

	// Ticket-scoped SLA status is visible to the ticket owner; everything
	// else under /sla is superadmin territory.
	sla := api.Group("/sla")
	sla.Get("/tickets/:id/status", cfg.AuthMiddleware.Handle, cfg.SLA.TicketStatus)

	slaAdmin := sla.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSuperAdmin))
	slaAdmin.Get("/policies", cfg.SLA.ListPolicies)
	slaAdmin.Post("/policies", cfg.SLA.CreatePolicy)
	slaAdmin.Patch("/policies/:id", cfg.SLA.UpdatePolicy)
	slaAdmin.Get("/violations", cfg.SLA.Violations)
	slaAdmin.Get("/report", cfg.SLA.Report)
	slaAdmin.Post("/sweep", cfg.SLA.Sweep)
	slaAdmin.Post("/align-tickets", cfg.SLA.AlignTickets)
}
