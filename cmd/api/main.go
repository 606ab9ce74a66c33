package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ops-analytics/internal/api/http"
	"github.com/spec-kit/ops-analytics/internal/api/http/handlers"
	"github.com/spec-kit/ops-analytics/internal/auth"
	"github.com/spec-kit/ops-analytics/internal/config"
	"github.com/spec-kit/ops-analytics/internal/observability"
	"github.com/spec-kit/ops-analytics/internal/persistence"
	"github.com/spec-kit/ops-analytics/internal/repository"
	"github.com/spec-kit/ops-analytics/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	loc, err := cfg.Report.Location()
	if err != nil {
		logger.Fatal("invalid report timezone", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	metrics := observability.NewMetrics("ops_analytics")
	stores := repository.NewStores(pg.PoolHandle(), redis.Client, loc, cfg.Report.ActivityRetention())

	deps := service.DependenciesFromStores(stores)
	deps.Logger = logger
	deps.Metrics = metrics
	deps.Location = loc
	deps.DefaultDays = cfg.Report.DefaultDays
	dashboardService := service.NewDashboardService(deps)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Dashboard:       handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware:  auth.NewAuthMiddleware(tokens),
		ActivityTracker: httptransport.ActivityTracker(stores.Activity, logger, nil),
	}
	if cfg.Metrics.Enabled {
		routes.Metrics = metrics.Handler()
		routes.MetricsPath = cfg.Metrics.Path
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
