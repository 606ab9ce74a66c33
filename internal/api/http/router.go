package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ops-analytics/internal/api/http/handlers"
	"github.com/spec-kit/ops-analytics/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Dashboard       *handlers.DashboardHandler
	AuthMiddleware  *auth.AuthMiddleware
	ActivityTracker fiber.Handler
	Metrics         http.Handler
	MetricsPath     string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(cfg.Metrics))
	}

	chain := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole()}
	if cfg.ActivityTracker != nil {
		chain = append(chain, cfg.ActivityTracker)
	}
	dashboard := app.Group("/api/v1/dashboard", chain...)
	dashboard.Get("/summary", cfg.Dashboard.Summary)
	dashboard.Get("/timeseries", cfg.Dashboard.TimeSeries)
	dashboard.Get("/analytics", cfg.Dashboard.Analytics)
}
