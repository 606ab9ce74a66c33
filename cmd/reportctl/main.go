package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-analytics/internal/auth"
	"github.com/spec-kit/ops-analytics/internal/cli"
	"github.com/spec-kit/ops-analytics/internal/config"
	"github.com/spec-kit/ops-analytics/internal/observability"
	"github.com/spec-kit/ops-analytics/internal/persistence"
	"github.com/spec-kit/ops-analytics/internal/repository"
	"github.com/spec-kit/ops-analytics/internal/service"
)

func main() {
	rootCmd := cli.RootCmd(cli.Backend{
		OpenReporter: openReporter,
		OpenTokens:   openTokens,
	}, version())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func version() string {
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}
	return "dev"
}

func openReporter(ctx context.Context, needs cli.ReportNeeds) (reporter cli.Reporter, closeFn func(), err error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		_ = logger.Sync()
	}
	defer func() {
		if err != nil {
			closeAll()
		}
	}()

	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, nil, err
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	closers = append(closers, pg.Close)

	var activityClient redis.Cmdable
	if needs.Activity {
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, rdb.Close)
		activityClient = rdb.Client
	}

	deps := service.DependenciesFromStores(repository.NewStores(pg.PoolHandle(), activityClient, loc, cfg.Report.ActivityRetention()))
	if activityClient == nil {
		deps.ActivityRepo = nil
	}
	deps.Logger = logger
	deps.Location = loc
	deps.DefaultDays = cfg.Report.DefaultDays

	logger.Debug("report backend ready", zap.String("timezone", loc.String()), zap.Bool("activity", needs.Activity))
	return service.NewDashboardService(deps), closeAll, nil
}

func openTokens() (cli.TokenIssuer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes), nil
}
