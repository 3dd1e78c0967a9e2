package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Roles          *handlers.RolesHandler
	Tickets        *handlers.TicketsHandler
	Companies      *handlers.CompaniesHandler
	Announcements  *handlers.AnnouncementsHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
	RateLimit      fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	authGroup := app.Group("/auth")
	if cfg.RateLimit != nil {
		authGroup.Use(cfg.RateLimit)
	}
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/select-role", cfg.AuthMiddleware.Handle, cfg.Auth.SelectRole)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Post("/roles/assignments", cfg.Roles.Assign)
	protected.Delete("/roles/assignments/:id", cfg.Roles.Revoke)
	protected.Get("/users/:id/roles", cfg.Roles.ListForUser)

	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Get("/tickets", cfg.Tickets.List)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Post("/tickets/:id/responses", cfg.Tickets.Respond)
	protected.Post("/tickets/:id/resolve", cfg.Tickets.Resolve)
	protected.Post("/tickets/:id/close", cfg.Tickets.Close)
	protected.Post("/tickets/:id/reopen", cfg.Tickets.Reopen)
	protected.Post("/tickets/:id/rating", cfg.Tickets.Rate)
	protected.Post("/tickets/:id/assignee", cfg.Tickets.AssignAgent)
	protected.Delete("/tickets/:id", cfg.Tickets.Delete)

	protected.Post("/companies", cfg.Companies.Create)
	protected.Get("/companies", cfg.Companies.List)
	protected.Get("/companies/:id", cfg.Companies.Get)
	protected.Patch("/companies/:id/status", cfg.Companies.SetStatus)
	protected.Post("/companies/:id/categories", cfg.Companies.CreateCategory)
	protected.Get("/companies/:id/categories", cfg.Companies.ListCategories)
	protected.Post("/companies/:id/areas", cfg.Companies.CreateArea)
	protected.Get("/companies/:id/areas", cfg.Companies.ListAreas)

	protected.Post("/companies/:id/announcements", cfg.Announcements.Create)
	protected.Get("/companies/:id/announcements", cfg.Announcements.ListForCompany)
	protected.Put("/announcements/:id", cfg.Announcements.Update)
	protected.Delete("/announcements/:id", cfg.Announcements.Delete)
}
