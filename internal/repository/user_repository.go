package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

// UserRepository counts users for reports.
type UserRepository interface {
	CountByRole(ctx context.Context, role domain.UserRole, scope domain.Scope) (int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// countByRoleQuery attributes employees through their sub-department
// memberships and supervisors through the root departments they own. Admins
// are global and never fall inside a bounded scope.
func countByRoleQuery(role domain.UserRole, scope domain.Scope) sq.SelectBuilder {
	if scope.IsUnscoped() {
		return psql.Select("COUNT(*)").From("users u").Where(sq.Eq{"u.role": string(role)})
	}

	b := psql.Select("COUNT(DISTINCT u.id)").From("users u").Where(sq.Eq{"u.role": string(role)})
	switch role {
	case domain.UserRoleEmployee:
		b = b.Join("employee_sub_departments esd ON esd.employee_id = u.id").
			Where(inIDs("esd.sub_department_id", scope.AllIDs()))
	case domain.UserRoleSupervisor:
		b = b.Join("supervisor_departments sd ON sd.supervisor_id = u.id").
			Where(inIDs("sd.department_id", scope.RootIDs))
	default:
		b = b.Where(sq.Expr("FALSE"))
	}
	return b
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.UserRole, scope domain.Scope) (int64, error) {
	query, args, err := countByRoleQuery(role, scope).ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}
