package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

// DepartmentRepository reads the department forest.
type DepartmentRepository interface {
	ChildrenOf(ctx context.Context, ids []string) ([]domain.Department, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Department, error)
	ListAll(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func departmentSelect() sq.SelectBuilder {
	return psql.Select("id::text", "name", "parent_id::text").From("departments").OrderBy("name ASC", "id ASC")
}

func childrenOfQuery(ids []string) sq.SelectBuilder {
	return departmentSelect().Where(inIDs("parent_id", ids))
}

func (r *departmentRepository) ChildrenOf(ctx context.Context, ids []string) ([]domain.Department, error) {
	if len(ids) == 0 {
		return []domain.Department{}, nil
	}
	return r.list(ctx, childrenOfQuery(ids))
}

func (r *departmentRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Department, error) {
	if len(ids) == 0 {
		return []domain.Department{}, nil
	}
	return r.list(ctx, departmentSelect().Where(inIDs("id", ids)))
}

func (r *departmentRepository) ListAll(ctx context.Context) ([]domain.Department, error) {
	return r.list(ctx, departmentSelect())
}

func (r *departmentRepository) list(ctx context.Context, b sq.SelectBuilder) ([]domain.Department, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func scanDepartments(rows pgx.Rows) ([]domain.Department, error) {
	result := []domain.Department{}
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.ParentID); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}
