package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/ops-analytics/internal/domain"
	"github.com/spec-kit/ops-analytics/internal/observability"
	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

func seedActivity(f *fakeStore) {
	yesterday := fixedNow.Add(-24 * time.Hour)
	f.tickets = []fakeTicket{
		{ID: "t1", DepartmentID: "D2", Status: domain.TicketStatusNew, CreatedAt: yesterday},
		{ID: "t2", DepartmentID: "D3", Status: domain.TicketStatusSeen, CreatedAt: yesterday},
		{ID: "t3", DepartmentID: "D4", Status: domain.TicketStatusClosed, CreatedAt: yesterday, FirstAnsweredAt: ptrTime(yesterday.Add(90 * time.Minute))},
		{ID: "t4", DepartmentID: "D5", Status: domain.TicketStatusAnswered, CreatedAt: yesterday, FirstAnsweredAt: ptrTime(yesterday.Add(30 * time.Minute))},
	}
	f.tasks = []fakeTask{
		{ID: "k1", Assignment: domain.AssignmentDepartment, TargetDept: "D1", Status: domain.TaskStatusCompleted, CompletedAt: ptrTime(yesterday)},
		{ID: "k2", Assignment: domain.AssignmentSubDepartment, TargetSub: "D2", Status: domain.TaskStatusSeen},
		{ID: "k3", Assignment: domain.AssignmentIndividual, AssigneeID: "e5", Status: domain.TaskStatusCompleted, CompletedAt: ptrTime(fixedNow.Add(-time.Hour))},
	}
	f.faqs = []fakeFaq{
		{DepartmentID: "D2", Satisfaction: 8, Dissatisfaction: 2},
		{DepartmentID: "D5", Satisfaction: 1, Dissatisfaction: 9},
	}
	f.activeUsers = 1234
}

func TestGetSummary_SupervisorSeesOnlyOwnSubtree(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)
	svc := newTestDashboard(f)

	summary, err := svc.GetSummary(context.Background(), domain.SupervisorIdentity("s1"))
	require.NoError(t, err)
	assert.Equal(t, &domain.Summary{
		TotalUsers:         2,
		ActiveTickets:      1,
		CompletedTickets:   1,
		CompletedTasks:     1,
		PendingTasks:       1,
		FaqSatisfactionPct: 80,
	}, summary)
}

func TestGetSummary_Unscoped(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)
	svc := newTestDashboard(f)

	for _, identity := range []*domain.Identity{nil, domain.AdminIdentity()} {
		summary, err := svc.GetSummary(context.Background(), identity)
		require.NoError(t, err)
		assert.Equal(t, &domain.Summary{
			TotalUsers:         8,
			ActiveTickets:      3,
			CompletedTickets:   1,
			CompletedTasks:     2,
			PendingTasks:       1,
			FaqSatisfactionPct: 45,
		}, summary)
	}
}

func TestGetSummary_UnknownSupervisorFailsWholeReport(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)

	summary, err := newTestDashboard(f).GetSummary(context.Background(), domain.SupervisorIdentity("ghost"))
	assert.Nil(t, summary)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.Zero(t, f.callCount("Tickets.CountByStatus"))
}

func TestGetSummary_NoPartialResults(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)
	f.failOn("SatisfactionTotals", errors.New("replica lag"))

	summary, err := newTestDashboard(f).GetSummary(context.Background(), nil)
	assert.Nil(t, summary)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamUnavailable))
}

func TestGetTimeSeries_DaysAndDefault(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)
	svc := newTestDashboard(f)

	points, err := svc.GetTimeSeries(context.Background(), nil, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, domain.TimeSeriesPoint{Label: "2024-03-11"}, points[0])
	assert.Equal(t, domain.TimeSeriesPoint{Label: "2024-03-12", TasksCompleted: 1, TicketsClosed: 2, AvgFirstResponseSeconds: 3600}, points[1])
	assert.Equal(t, domain.TimeSeriesPoint{Label: "2024-03-13", TasksCompleted: 1}, points[2])

	points, err = svc.GetTimeSeries(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Len(t, points, DefaultReportDays)
	assert.Equal(t, "2024-03-13", points[len(points)-1].Label)
}

func TestGetTimeSeries_EmployeeScope(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)

	points, err := newTestDashboard(f).GetTimeSeries(context.Background(), domain.EmployeeIdentity("e5"), 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, domain.TimeSeriesPoint{Label: "2024-03-12", TicketsClosed: 1, AvgFirstResponseSeconds: 1800}, points[0])
	assert.Equal(t, domain.TimeSeriesPoint{Label: "2024-03-13", TasksCompleted: 1}, points[1])
}

func TestDashboard_IndividualTaskFollowsInScopeMembership(t *testing.T) {
	f := newOrgFixture()
	f.employees["e9"] = &domain.EmployeeLinkage{EmployeeID: "e9", SubDepartmentIDs: []string{"D2", "D5"}}
	f.tasks = []fakeTask{
		{ID: "k9", Assignment: domain.AssignmentIndividual, AssigneeID: "e9", Status: domain.TaskStatusCompleted, CompletedAt: ptrTime(fixedNow.Add(-time.Hour))},
	}
	svc := newTestDashboard(f)
	ctx := context.Background()

	for supervisor, dept := range map[string]domain.DepartmentPerformance{
		"s1": {DepartmentID: "D2", Name: "Support", Score: 100},
		"s2": {DepartmentID: "D5", Name: "Billing", Score: 100},
	} {
		identity := domain.SupervisorIdentity(supervisor)

		summary, err := svc.GetSummary(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.CompletedTasks, supervisor)

		points, err := svc.GetTimeSeries(ctx, identity, 1)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, summary.CompletedTasks, points[0].TasksCompleted, supervisor)

		analytics, err := svc.GetAnalytics(ctx, identity, 1)
		require.NoError(t, err)
		assert.Equal(t, []domain.DepartmentPerformance{dept}, analytics.DepartmentPerformance, supervisor)
	}
}

func TestGetAnalytics_Unscoped(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)

	analytics, err := newTestDashboard(f).GetAnalytics(context.Background(), domain.AdminIdentity(), 7)
	require.NoError(t, err)
	assert.Equal(t, []domain.Kpi{
		{Label: KpiAvgResponseTime, Value: "1h 0m"},
		{Label: KpiTaskCompletionRate, Value: "67%"},
		{Label: KpiFaqSatisfaction, Value: "45%"},
		{Label: KpiActiveUsers, Value: "1,234"},
	}, analytics.Kpis)
	assert.Equal(t, []domain.DepartmentPerformance{
		{DepartmentID: "D5", Name: "Billing", Score: 100},
		{DepartmentID: "D4", Name: "Escalations", Score: 50},
		{DepartmentID: "D1", Name: "Operations", Score: 50},
	}, analytics.DepartmentPerformance)
}

func TestGetAnalytics_ActivityStoreFailure(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)
	cause := errors.New("redis down")
	f.failOn("DistinctActiveUsers", cause)

	analytics, err := newTestDashboard(f).GetAnalytics(context.Background(), nil, 7)
	assert.Nil(t, analytics)
	assert.ErrorIs(t, err, cause)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "activity store", de.Details["source"])
}

func TestDashboard_Idempotent(t *testing.T) {
	f := newOrgFixture()
	seedActivity(f)
	svc := NewDashboardService(DashboardDependencies{
		DepartmentRepo: f,
		IdentityRepo:   f,
		UserRepo:       f,
		TicketRepo:     f,
		TaskRepo:       fakeTasks{f},
		FaqRepo:        f,
		ActivityRepo:   f,
		Logger:         zaptest.NewLogger(t),
		Metrics:        observability.NewMetrics("test"),
		Location:       time.UTC,
		Now:            func() time.Time { return fixedNow },
	})
	ctx := context.Background()
	identity := domain.SupervisorIdentity("s1")

	render := func() []byte {
		summary, err := svc.GetSummary(ctx, identity)
		require.NoError(t, err)
		series, err := svc.GetTimeSeries(ctx, identity, 5)
		require.NoError(t, err)
		analytics, err := svc.GetAnalytics(ctx, identity, 5)
		require.NoError(t, err)
		out, err := json.Marshal([]any{summary, series, analytics})
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, string(render()), string(render()))
}
