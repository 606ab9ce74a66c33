package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-analytics/internal/api/dto"
	"github.com/spec-kit/ops-analytics/internal/auth"
	"github.com/spec-kit/ops-analytics/internal/domain"
	"github.com/spec-kit/ops-analytics/internal/service"
	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

// DashboardReporter produces the dashboard reports.
type DashboardReporter interface {
	GetSummary(ctx context.Context, identity *domain.Identity) (*domain.Summary, error)
	GetTimeSeries(ctx context.Context, identity *domain.Identity, days int) ([]domain.TimeSeriesPoint, error)
	GetAnalytics(ctx context.Context, identity *domain.Identity, days int) (*domain.Analytics, error)
	DefaultDays() int
}

// DashboardHandler serves the dashboard endpoints.
type DashboardHandler struct {
	service DashboardReporter
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(reporter DashboardReporter) *DashboardHandler {
	return &DashboardHandler{service: reporter}
}

// Summary GET /api/v1/dashboard/summary.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("identity required")
	}
	summary, err := h.service.GetSummary(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSummaryResponse(summary)})
}

// TimeSeries GET /api/v1/dashboard/timeseries?range=7d.
func (h *DashboardHandler) TimeSeries(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("identity required")
	}
	points, err := h.service.GetTimeSeries(c.UserContext(), identity, h.days(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTimeSeries(points)})
}

// Analytics GET /api/v1/dashboard/analytics?range=7d.
func (h *DashboardHandler) Analytics(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("identity required")
	}
	analytics, err := h.service.GetAnalytics(c.UserContext(), identity, h.days(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAnalyticsResponse(analytics)})
}

// days reads the lenient "{n}d" range parameter.
func (h *DashboardHandler) days(c *fiber.Ctx) int {
	return service.ParseDayRangeOr(c.Query("range"), h.service.DefaultDays())
}
