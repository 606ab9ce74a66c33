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

// UserCounts holds user totals per role.
type UserCounts struct {
	Admins      int64
	Supervisors int64
	Employees   int64
}

// Total sums every role.
func (u UserCounts) Total() int64 {
	return u.Admins + u.Supervisors + u.Employees
}

// TicketCounts splits tickets into active and closed.
type TicketCounts struct {
	Active int64
	Closed int64
}

// TaskCounts splits tasks into completed and pending.
type TaskCounts struct {
	Completed int64
	Pending   int64
}

// CompletionRate is the rounded share of completed tasks, 0 when there are none.
func (t TaskCounts) CompletionRate() int64 {
	return roundedPercent(t.Completed, t.Completed+t.Pending)
}

// UserCounter counts users visible in a scope.
type UserCounter interface {
	CountUsers(ctx context.Context, scope domain.Scope) (UserCounts, error)
}

// TicketCounter counts tickets visible in a scope.
type TicketCounter interface {
	CountTickets(ctx context.Context, scope domain.Scope) (TicketCounts, error)
}

// TaskCounter counts tasks visible in a scope.
type TaskCounter interface {
	CountTasks(ctx context.Context, scope domain.Scope) (TaskCounts, error)
}

// SatisfactionMeter sums FAQ feedback visible in a scope.
type SatisfactionMeter interface {
	Satisfaction(ctx context.Context, scope domain.Scope) (domain.SatisfactionTotals, error)
}

// ResponseTimer averages ticket first-response latency over a window.
type ResponseTimer interface {
	AverageFirstResponse(ctx context.Context, scope domain.Scope, window domain.TimeWindow) (time.Duration, error)
}

// SatisfactionPercent is round(100*sat/(sat+diss)), 0 when there is no feedback.
func SatisfactionPercent(t domain.SatisfactionTotals) int64 {
	return roundedPercent(t.Satisfaction, t.Satisfaction+t.Dissatisfaction)
}

func roundedPercent(part, whole int64) int64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	pct := int64(math.Round(100 * float64(part) / float64(whole)))
	if pct > 100 {
		return 100
	}
	return pct
}

type userAggregator struct {
	users repository.UserRepository
}

// NewUserAggregator counts users through the user store.
func NewUserAggregator(users repository.UserRepository) UserCounter {
	return &userAggregator{users: users}
}

func (a *userAggregator) CountUsers(ctx context.Context, scope domain.Scope) (UserCounts, error) {
	var counts UserCounts
	g, gctx := errgroup.WithContext(ctx)
	// Admins are global; a bounded scope never contains them.
	if scope.IsUnscoped() {
		g.Go(func() error {
			return a.count(gctx, domain.UserRoleAdmin, scope, &counts.Admins)
		})
	}
	g.Go(func() error {
		return a.count(gctx, domain.UserRoleSupervisor, scope, &counts.Supervisors)
	})
	g.Go(func() error {
		return a.count(gctx, domain.UserRoleEmployee, scope, &counts.Employees)
	})
	if err := g.Wait(); err != nil {
		return UserCounts{}, err
	}
	return counts, nil
}

func (a *userAggregator) count(ctx context.Context, role domain.UserRole, scope domain.Scope, dst *int64) error {
	n, err := a.users.CountByRole(ctx, role, scope)
	if err != nil {
		return apperrors.NewUpstreamUnavailable("user store", err)
	}
	*dst = n
	return nil
}

type ticketAggregator struct {
	tickets repository.TicketRepository
}

// NewTicketAggregator counts tickets through the ticket store.
func NewTicketAggregator(tickets repository.TicketRepository) TicketCounter {
	return &ticketAggregator{tickets: tickets}
}

func (a *ticketAggregator) CountTickets(ctx context.Context, scope domain.Scope) (TicketCounts, error) {
	var counts TicketCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.count(gctx, domain.ActiveTicketStatuses, scope, &counts.Active)
	})
	g.Go(func() error {
		return a.count(gctx, domain.ClosedTicketStatuses, scope, &counts.Closed)
	})
	if err := g.Wait(); err != nil {
		return TicketCounts{}, err
	}
	return counts, nil
}

func (a *ticketAggregator) count(ctx context.Context, statuses []domain.TicketStatus, scope domain.Scope, dst *int64) error {
	n, err := a.tickets.CountByStatus(ctx, statuses, scope)
	if err != nil {
		return apperrors.NewUpstreamUnavailable("ticket store", err)
	}
	*dst = n
	return nil
}

// AverageFirstResponse implements ResponseTimer.
func (a *ticketAggregator) AverageFirstResponse(ctx context.Context, scope domain.Scope, window domain.TimeWindow) (time.Duration, error) {
	responses, err := a.tickets.FirstResponseTimesInWindow(ctx, window, scope)
	if err != nil {
		return 0, apperrors.NewUpstreamUnavailable("ticket store", err)
	}
	return averageLatency(responses), nil
}

// NewResponseTimer averages first responses through the ticket store.
func NewResponseTimer(tickets repository.TicketRepository) ResponseTimer {
	return &ticketAggregator{tickets: tickets}
}

func averageLatency(responses []domain.FirstResponse) time.Duration {
	if len(responses) == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range responses {
		total += r.Latency()
	}
	return total / time.Duration(len(responses))
}

type taskAggregator struct {
	tasks repository.TaskRepository
}

// NewTaskAggregator counts tasks through the task store.
func NewTaskAggregator(tasks repository.TaskRepository) TaskCounter {
	return &taskAggregator{tasks: tasks}
}

// CountTasks sums the three assignment shapes for a bounded scope. Every task
// has exactly one assignment type, so the per-type counts never overlap.
// Unscoped requests use one flat count per status set.
func (a *taskAggregator) CountTasks(ctx context.Context, scope domain.Scope) (TaskCounts, error) {
	var (
		completed [3]int64
		pending   [3]int64
	)
	g, gctx := errgroup.WithContext(ctx)

	if scope.IsUnscoped() {
		g.Go(func() error {
			return a.flat(gctx, domain.CompletedTaskStatuses, &completed[0])
		})
		g.Go(func() error {
			return a.flat(gctx, domain.PendingTaskStatuses, &pending[0])
		})
	} else {
		for i, assignment := range domain.AssignmentTypes {
			i, assignment := i, assignment
			g.Go(func() error {
				return a.byAssignment(gctx, domain.CompletedTaskStatuses, assignment, scope, &completed[i])
			})
			g.Go(func() error {
				return a.byAssignment(gctx, domain.PendingTaskStatuses, assignment, scope, &pending[i])
			})
		}
	}
	if err := g.Wait(); err != nil {
		return TaskCounts{}, err
	}

	var counts TaskCounts
	for i := range completed {
		counts.Completed += completed[i]
		counts.Pending += pending[i]
	}
	return counts, nil
}

func (a *taskAggregator) flat(ctx context.Context, statuses []domain.TaskStatus, dst *int64) error {
	n, err := a.tasks.CountByStatus(ctx, statuses)
	if err != nil {
		return apperrors.NewUpstreamUnavailable("task store", err)
	}
	*dst = n
	return nil
}

func (a *taskAggregator) byAssignment(ctx context.Context, statuses []domain.TaskStatus, assignment domain.AssignmentType, scope domain.Scope, dst *int64) error {
	n, err := a.tasks.CountByStatusAndAssignment(ctx, statuses, assignment, scope)
	if err != nil {
		return apperrors.NewUpstreamUnavailable("task store", err)
	}
	*dst = n
	return nil
}

type faqAggregator struct {
	faqs repository.FaqRepository
}

// NewFaqAggregator sums FAQ feedback through the FAQ store.
func NewFaqAggregator(faqs repository.FaqRepository) SatisfactionMeter {
	return &faqAggregator{faqs: faqs}
}

func (a *faqAggregator) Satisfaction(ctx context.Context, scope domain.Scope) (domain.SatisfactionTotals, error) {
	totals, err := a.faqs.SatisfactionTotals(ctx, scope)
	if err != nil {
		return domain.SatisfactionTotals{}, apperrors.NewUpstreamUnavailable("faq store", err)
	}
	return totals, nil
}
