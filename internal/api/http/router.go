package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/http/handlers"
	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Requests       *handlers.RequestsHandler
	Technicians    *handlers.TechniciansHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	api.Post("/auth/logout", cfg.Auth.Logout)

	api.Get("/requests", cfg.Requests.List)
	api.Post("/requests", cfg.Requests.Create)
	api.Get("/requests/search", cfg.Requests.Search)
	api.Get("/requests/:number", cfg.Requests.Get)
	api.Patch("/requests/:number", cfg.Requests.Update)
	api.Get("/requests/:number/history", cfg.Requests.History)
	api.Get("/technicians", cfg.Technicians.List)

	backOffice := auth.RequireRole(domain.RoleAdministrator, domain.RoleManager, domain.RoleOperator)
	api.Post("/requests/:number/assign", backOffice, cfg.Requests.Assign)
	api.Get("/stats", backOffice, cfg.Stats.Summary)
}
