package service

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/ops-analytics/internal/domain"
	"github.com/spec-kit/ops-analytics/internal/repository"
	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

// DayLabelLayout formats time series labels.
const DayLabelLayout = "2006-01-02"

// TimeSeriesGenerator produces one point per calendar day.
type TimeSeriesGenerator struct {
	tickets  repository.TicketRepository
	tasks    repository.TaskRepository
	location *time.Location
}

// NewTimeSeriesGenerator constructs the generator. Day boundaries are cut in loc.
func NewTimeSeriesGenerator(tickets repository.TicketRepository, tasks repository.TaskRepository, loc *time.Location) *TimeSeriesGenerator {
	if loc == nil {
		loc = time.Local
	}
	return &TimeSeriesGenerator{tickets: tickets, tasks: tasks, location: loc}
}

// DayWindow is [today-(days-1) 00:00, tomorrow 00:00) in loc.
func DayWindow(now time.Time, days int, loc *time.Location) domain.TimeWindow {
	if days < 1 {
		days = 1
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return domain.TimeWindow{
		From: today.AddDate(0, 0, -(days - 1)),
		To:   today.AddDate(0, 0, 1),
	}
}

// Series returns exactly days points, oldest first.
func (g *TimeSeriesGenerator) Series(ctx context.Context, scope domain.Scope, days int, now time.Time) ([]domain.TimeSeriesPoint, error) {
	window := DayWindow(now, days, g.location)

	var (
		completions []domain.TaskCompletion
		responses   []domain.FirstResponse
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		completions, err = g.tasks.CompletedInWindow(gctx, window, scope)
		if err != nil {
			return apperrors.NewUpstreamUnavailable("task store", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		responses, err = g.tickets.FirstResponseTimesInWindow(gctx, window, scope)
		if err != nil {
			return apperrors.NewUpstreamUnavailable("ticket store", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return BuildSeries(window.From, days, g.location, completions, responses), nil
}

// BuildSeries materialises the day range first and then left-joins the facts
// onto it, so idle days still appear with zeros. Facts outside the range are
// ignored.
func BuildSeries(from time.Time, days int, loc *time.Location, completions []domain.TaskCompletion, responses []domain.FirstResponse) []domain.TimeSeriesPoint {
	if days < 1 {
		return []domain.TimeSeriesPoint{}
	}
	start := from.In(loc)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	points := make([]domain.TimeSeriesPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		label := start.AddDate(0, 0, i).Format(DayLabelLayout)
		points[i] = domain.TimeSeriesPoint{Label: label}
		index[label] = i
	}

	for _, c := range completions {
		if i, ok := index[c.CompletedAt.In(loc).Format(DayLabelLayout)]; ok {
			points[i].TasksCompleted++
		}
	}

	latency := make([]time.Duration, days)
	for _, r := range responses {
		if i, ok := index[r.FirstAnsweredAt.In(loc).Format(DayLabelLayout)]; ok {
			points[i].TicketsClosed++
			latency[i] += r.Latency()
		}
	}
	for i := range points {
		if points[i].TicketsClosed == 0 {
			continue
		}
		avg := latency[i].Seconds() / float64(points[i].TicketsClosed)
		points[i].AvgFirstResponseSeconds = int64(math.Round(avg))
	}
	return points
}
