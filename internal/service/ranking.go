package service

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/ops-analytics/internal/domain"
	"github.com/spec-kit/ops-analytics/internal/repository"
	apperrors "github.com/spec-kit/ops-analytics/pkg/util/errorutil"
)

// DepartmentRanker builds the department leaderboard.
type DepartmentRanker struct {
	departments repository.DepartmentRepository
	tickets     repository.TicketRepository
	tasks       repository.TaskRepository
}

// NewDepartmentRanker constructs the ranker.
func NewDepartmentRanker(departments repository.DepartmentRepository, tickets repository.TicketRepository, tasks repository.TaskRepository) *DepartmentRanker {
	return &DepartmentRanker{departments: departments, tickets: tickets, tasks: tasks}
}

// Rank scores every in-scope department on work done inside window.
func (r *DepartmentRanker) Rank(ctx context.Context, scope domain.Scope, window domain.TimeWindow) ([]domain.DepartmentPerformance, error) {
	var (
		departments []domain.Department
		answered    []domain.FirstResponse
		completed   []domain.TaskCompletion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if scope.IsUnscoped() {
			departments, err = r.departments.ListAll(gctx)
		} else {
			departments, err = r.departments.ListByIDs(gctx, scope.AllIDs())
		}
		if err != nil {
			return apperrors.NewUpstreamUnavailable("department store", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		answered, err = r.tickets.FirstResponseTimesInWindow(gctx, window, scope)
		if err != nil {
			return apperrors.NewUpstreamUnavailable("ticket store", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		completed, err = r.tasks.CompletedInWindow(gctx, window, scope)
		if err != nil {
			return apperrors.NewUpstreamUnavailable("task store", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return RankDepartments(departments, answered, completed), nil
}

// RankDepartments scores each department as tickets answered plus tasks
// completed, normalised to 0..100 against the best department. Departments
// with no work or no name are left off the board. Ties sort by name.
func RankDepartments(departments []domain.Department, answered []domain.FirstResponse, completed []domain.TaskCompletion) []domain.DepartmentPerformance {
	raw := make(map[string]int64, len(departments))
	for _, a := range answered {
		raw[a.DepartmentID]++
	}
	for _, c := range completed {
		if c.DepartmentKey != "" {
			raw[c.DepartmentKey]++
		}
	}

	type entry struct {
		dept domain.Department
		raw  int64
	}
	entries := make([]entry, 0, len(departments))
	seen := make(map[string]struct{}, len(departments))
	maxScore := int64(1)
	for _, dept := range departments {
		if _, dup := seen[dept.ID]; dup {
			continue
		}
		seen[dept.ID] = struct{}{}
		score := raw[dept.ID]
		if score > maxScore {
			maxScore = score
		}
		entries = append(entries, entry{dept: dept, raw: score})
	}

	result := make([]domain.DepartmentPerformance, 0, len(entries))
	for _, e := range entries {
		if e.raw == 0 || e.dept.Name == "" {
			continue
		}
		result = append(result, domain.DepartmentPerformance{
			DepartmentID: e.dept.ID,
			Name:         e.dept.Name,
			Score:        int64(math.Round(100 * float64(e.raw) / float64(maxScore))),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].DepartmentID < result[j].DepartmentID
	})
	return result
}
