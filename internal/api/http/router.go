package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-crm/internal/api/http/handlers"
	"github.com/spec-kit/sales-crm/internal/auth"
	"github.com/spec-kit/sales-crm/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Directory      *handlers.DirectoryHandler
	CRM            *handlers.CRMHandler
	Flows          *handlers.FlowsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	protected.Get("/me", cfg.Auth.Me)
	protected.Get("/me/preferences", cfg.Auth.GetPreferences)
	protected.Put("/me/preferences", cfg.Auth.UpdatePreferences)

	protected.Get("/directory/visible", cfg.Directory.Visible)
	protected.Get("/directory/team", cfg.Directory.Team)

	protected.Get("/dashboard", cfg.CRM.Dashboard)
	protected.Get("/anchors", cfg.CRM.ListAnchors)
	protected.Get("/anchors/:id", cfg.CRM.GetAnchor)
	protected.Post("/anchors/:id/score", cfg.Flows.ScoreAnchor)

	protected.Get("/spokes", cfg.CRM.ListSpokes)
	protected.Post("/spokes/score", auth.RequireManagerial(), cfg.Flows.ScoreSpokes)
	protected.Get("/spokes/:id", cfg.CRM.GetSpoke)
	protected.Post("/spokes/:id/score", cfg.Flows.ScoreSpoke)

	protected.Get("/tasks", cfg.CRM.ListTasks)
	protected.Post("/tasks/:id/complete", cfg.CRM.CompleteTask)

	protected.Get("/activities", cfg.CRM.ListActivities)
	protected.Post("/activities", cfg.CRM.CreateActivity)

	protected.Get("/flows", cfg.Flows.List)
	protected.Post("/flows/:name", cfg.Flows.Invoke)
}

// NewApp builds a fiber app with the global middlewares installed.
func NewApp(appName string, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, timeout)
	return app
}
