package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/ops-analytics/internal/domain"
	"github.com/spec-kit/ops-analytics/internal/observability"
	"github.com/spec-kit/ops-analytics/internal/repository"
	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

// Report names used for metrics and logs.
const (
	ReportSummary    = "summary"
	ReportTimeSeries = "timeseries"
	ReportAnalytics  = "analytics"
)

// DashboardService composes role-scoped dashboard reports.
type DashboardService struct {
	scopes      *ScopeService
	users       UserCounter
	tickets     TicketCounter
	tasks       TaskCounter
	faqs        SatisfactionMeter
	responses   ResponseTimer
	series      *TimeSeriesGenerator
	ranker      *DepartmentRanker
	activity    repository.ActivityRepository
	logger      *zap.Logger
	metrics     *observability.Metrics
	location    *time.Location
	now         func() time.Time
	defaultDays int
}

// DashboardDependencies bundles stores and ambient services for the dashboard.
type DashboardDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	IdentityRepo   repository.IdentityRepository
	UserRepo       repository.UserRepository
	TicketRepo     repository.TicketRepository
	TaskRepo       repository.TaskRepository
	FaqRepo        repository.FaqRepository
	ActivityRepo   repository.ActivityRepository
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Location       *time.Location
	Now            func() time.Time
	DefaultDays    int
}

// NewDashboardService wires the scope calculator, aggregators, generator and
// ranker over the given stores.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	defaultDays := deps.DefaultDays
	if defaultDays < 1 || defaultDays > MaxReportDays {
		defaultDays = DefaultReportDays
	}

	hierarchy := NewDepartmentHierarchy(deps.DepartmentRepo)
	return &DashboardService{
		scopes:      NewScopeService(deps.IdentityRepo, hierarchy, logger),
		users:       NewUserAggregator(deps.UserRepo),
		tickets:     NewTicketAggregator(deps.TicketRepo),
		tasks:       NewTaskAggregator(deps.TaskRepo),
		faqs:        NewFaqAggregator(deps.FaqRepo),
		responses:   NewResponseTimer(deps.TicketRepo),
		series:      NewTimeSeriesGenerator(deps.TicketRepo, deps.TaskRepo, loc),
		ranker:      NewDepartmentRanker(deps.DepartmentRepo, deps.TicketRepo, deps.TaskRepo),
		activity:    deps.ActivityRepo,
		logger:      logger,
		metrics:     deps.Metrics,
		location:    loc,
		now:         now,
		defaultDays: defaultDays,
	}
}

// DefaultDays is the range applied when a caller passes days < 1.
func (s *DashboardService) DefaultDays() int {
	return s.defaultDays
}

// GetSummary returns headline counts for everything identity can see.
func (s *DashboardService) GetSummary(ctx context.Context, identity *domain.Identity) (summary *domain.Summary, err error) {
	started := time.Now()
	scope, err := s.scopes.Resolve(ctx, identity)
	if err != nil {
		s.observe(ReportSummary, identity, scope, 0, started, err)
		return nil, err
	}
	defer func() { s.observe(ReportSummary, identity, scope, 0, started, err) }()

	var (
		users        UserCounts
		tickets      TicketCounts
		tasks        TaskCounts
		satisfaction domain.SatisfactionTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.CountUsers(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = s.tickets.CountTickets(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.CountTasks(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		satisfaction, err = s.faqs.Satisfaction(gctx, scope)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	return &domain.Summary{
		TotalUsers:         users.Total(),
		ActiveTickets:      tickets.Active,
		CompletedTickets:   tickets.Closed,
		CompletedTasks:     tasks.Completed,
		PendingTasks:       tasks.Pending,
		FaqSatisfactionPct: SatisfactionPercent(satisfaction),
	}, nil
}

// GetTimeSeries returns one point per day for the last days days.
func (s *DashboardService) GetTimeSeries(ctx context.Context, identity *domain.Identity, days int) (points []domain.TimeSeriesPoint, err error) {
	days = s.normalizeDays(days)
	started := time.Now()
	scope, err := s.scopes.Resolve(ctx, identity)
	if err != nil {
		s.observe(ReportTimeSeries, identity, scope, days, started, err)
		return nil, err
	}
	defer func() { s.observe(ReportTimeSeries, identity, scope, days, started, err) }()

	points, err = s.series.Series(ctx, scope, days, s.now())
	if err != nil {
		return nil, err
	}
	return points, nil
}

// GetAnalytics returns the KPI strip and department leaderboard for the last
// days days.
func (s *DashboardService) GetAnalytics(ctx context.Context, identity *domain.Identity, days int) (analytics *domain.Analytics, err error) {
	days = s.normalizeDays(days)
	started := time.Now()
	scope, err := s.scopes.Resolve(ctx, identity)
	if err != nil {
		s.observe(ReportAnalytics, identity, scope, days, started, err)
		return nil, err
	}
	defer func() { s.observe(ReportAnalytics, identity, scope, days, started, err) }()

	window := DayWindow(s.now(), days, s.location)

	var (
		avgResponse  time.Duration
		tasks        TaskCounts
		satisfaction domain.SatisfactionTotals
		activeUsers  int64
		ranking      []domain.DepartmentPerformance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		avgResponse, err = s.responses.AverageFirstResponse(gctx, scope, window)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.CountTasks(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		satisfaction, err = s.faqs.Satisfaction(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		activeUsers, err = s.activeUsers(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		ranking, err = s.ranker.Rank(gctx, scope, window)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	return &domain.Analytics{
		Kpis: BuildKpis(
			int64(avgResponse/time.Second),
			tasks.CompletionRate(),
			SatisfactionPercent(satisfaction),
			activeUsers,
		),
		DepartmentPerformance: ranking,
	}, nil
}

func (s *DashboardService) activeUsers(ctx context.Context, window domain.TimeWindow) (int64, error) {
	if s.activity == nil {
		return 0, nil
	}
	n, err := s.activity.DistinctActiveUsers(ctx, window)
	if err != nil {
		return 0, apperrors.NewUpstreamUnavailable("activity store", err)
	}
	return n, nil
}

func (s *DashboardService) normalizeDays(days int) int {
	if days < 1 || days > MaxReportDays {
		return s.defaultDays
	}
	return days
}

func (s *DashboardService) observe(report string, identity *domain.Identity, scope domain.Scope, days int, started time.Time, err error) {
	elapsed := time.Since(started)
	scoped := !scope.IsUnscoped()
	s.metrics.ObserveReport(report, scoped, elapsed, err)

	fields := []zap.Field{
		zap.String("report", report),
		zap.Bool("scoped", scoped),
		zap.Duration("elapsed", elapsed),
	}
	if identity != nil {
		fields = append(fields, zap.String("role", string(identity.Role)), zap.String("subject_id", identity.SubjectID))
	}
	if days > 0 {
		fields = append(fields, zap.Int("days", days))
	}
	if err != nil {
		s.logger.Warn("report failed", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Debug("report composed", fields...)
}

// DependenciesFromStores fills the store fields of DashboardDependencies.
func DependenciesFromStores(stores repository.Stores) DashboardDependencies {
	return DashboardDependencies{
		DepartmentRepo: stores.Departments,
		IdentityRepo:   stores.Identities,
		UserRepo:       stores.Users,
		TicketRepo:     stores.Tickets,
		TaskRepo:       stores.Tasks,
		FaqRepo:        stores.Faqs,
		ActivityRepo:   stores.Activity,
	}
}
