package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

// TaskRepository reads task facts for reports.
type TaskRepository interface {
	CountByStatus(ctx context.Context, statuses []domain.TaskStatus) (int64, error)
	CountByStatusAndAssignment(ctx context.Context, statuses []domain.TaskStatus, assignment domain.AssignmentType, scope domain.Scope) (int64, error)
	CompletedInWindow(ctx context.Context, window domain.TimeWindow, scope domain.Scope) ([]domain.TaskCompletion, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

// taskDepartmentKey attributes a task to one department: its target
// department, its target sub-department, or the assignee's lowest
// sub-department. Scoped requests only consider memberships among the scope's
// descendants, the same ones the individual task count joins on.
func taskDepartmentKey(scope domain.Scope) sq.Sqlizer {
	const prefix = `COALESCE(t.target_department_id::text, t.target_sub_department_id::text,
        (SELECT MIN(esd.sub_department_id::text) FROM employee_sub_departments esd WHERE esd.employee_id = t.assignee_id`
	if scope.IsUnscoped() {
		return sq.Expr(prefix + `)) AS department_key`)
	}
	membership, args, err := inIDs("esd.sub_department_id", scope.DescendantIDs).ToSql()
	if err != nil {
		return sq.Expr("NULL AS department_key")
	}
	return sq.Expr(prefix+` AND `+membership+`)) AS department_key`, args...)
}

func countTasksQuery(statuses []domain.TaskStatus) sq.SelectBuilder {
	return psql.Select("COUNT(*)").From("tasks t").
		Where(sq.Eq{"t.status": taskStatusValues(statuses)})
}

// countTasksByAssignmentQuery targets department tasks at the scope roots,
// sub-department tasks at the descendants, and individual tasks through the
// assignee's memberships counted distinctly.
func countTasksByAssignmentQuery(statuses []domain.TaskStatus, assignment domain.AssignmentType, scope domain.Scope) (sq.SelectBuilder, error) {
	b := psql.Select("COUNT(DISTINCT t.id)").From("tasks t").
		Where(sq.Eq{"t.status": taskStatusValues(statuses)}).
		Where(sq.Eq{"t.assignment_type": string(assignment)})

	switch assignment {
	case domain.AssignmentDepartment:
		return applyScope(b, scope, "t.target_department_id", scope.RootIDs), nil
	case domain.AssignmentSubDepartment:
		return applyScope(b, scope, "t.target_sub_department_id", scope.DescendantIDs), nil
	case domain.AssignmentIndividual:
		if scope.IsUnscoped() {
			return b, nil
		}
		b = b.Join("employee_sub_departments esd ON esd.employee_id = t.assignee_id")
		return b.Where(inIDs("esd.sub_department_id", scope.DescendantIDs)), nil
	}
	return b, fmt.Errorf("unknown assignment type %q", assignment)
}

func completedInWindowQuery(window domain.TimeWindow, scope domain.Scope) sq.SelectBuilder {
	inner := psql.Select("t.id::text AS task_id").
		Column(taskDepartmentKey(scope)).
		Column("t.completed_at").
		From("tasks t").
		Where(sq.Eq{"t.status": string(domain.TaskStatusCompleted)}).
		Where(sq.NotEq{"t.completed_at": nil}).
		Where(sq.GtOrEq{"t.completed_at": window.From}).
		Where(sq.Lt{"t.completed_at": window.To})

	b := psql.Select("c.task_id", "c.department_key", "c.completed_at").
		FromSelect(inner, "c").
		OrderBy("c.completed_at ASC", "c.task_id ASC")
	return applyScope(b, scope, "c.department_key", scope.AllIDs())
}

func (r *taskRepository) CountByStatus(ctx context.Context, statuses []domain.TaskStatus) (int64, error) {
	return r.count(ctx, countTasksQuery(statuses))
}

func (r *taskRepository) CountByStatusAndAssignment(ctx context.Context, statuses []domain.TaskStatus, assignment domain.AssignmentType, scope domain.Scope) (int64, error) {
	b, err := countTasksByAssignmentQuery(statuses, assignment, scope)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, b)
}

func (r *taskRepository) CompletedInWindow(ctx context.Context, window domain.TimeWindow, scope domain.Scope) ([]domain.TaskCompletion, error) {
	query, args, err := completedInWindowQuery(window, scope).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TaskCompletion{}
	for rows.Next() {
		var (
			tc  domain.TaskCompletion
			key *string
		)
		if err := rows.Scan(&tc.TaskID, &key, &tc.CompletedAt); err != nil {
			return nil, err
		}
		if key != nil {
			tc.DepartmentKey = *key
		}
		result = append(result, tc)
	}
	return result, rows.Err()
}

func (r *taskRepository) count(ctx context.Context, b sq.SelectBuilder) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}
