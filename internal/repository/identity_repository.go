package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

// IdentityRepository resolves the department linkage of supervisors and
// employees. Unknown subjects yield pgx.ErrNoRows.
type IdentityRepository interface {
	SupervisorRootDepartments(ctx context.Context, supervisorID string) ([]string, error)
	EmployeeLinkage(ctx context.Context, employeeID string) (*domain.EmployeeLinkage, error)
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

func (r *identityRepository) SupervisorRootDepartments(ctx context.Context, supervisorID string) ([]string, error) {
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE id::text=$1 AND role='supervisor')`
	var exists bool
	if err := r.pool.QueryRow(ctx, existsQuery, supervisorID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, pgx.ErrNoRows
	}

	const query = `
        SELECT department_id::text FROM supervisor_departments
        WHERE supervisor_id::text=$1 ORDER BY department_id`
	return r.collectIDs(ctx, query, supervisorID)
}

func (r *identityRepository) EmployeeLinkage(ctx context.Context, employeeID string) (*domain.EmployeeLinkage, error) {
	const query = `SELECT id::text, supervisor_id::text FROM employees WHERE id::text=$1`
	linkage := domain.EmployeeLinkage{}
	if err := r.pool.QueryRow(ctx, query, employeeID).Scan(&linkage.EmployeeID, &linkage.SupervisorID); err != nil {
		return nil, err
	}

	const subQuery = `
        SELECT sub_department_id::text FROM employee_sub_departments
        WHERE employee_id::text=$1 ORDER BY sub_department_id`
	ids, err := r.collectIDs(ctx, subQuery, employeeID)
	if err != nil {
		return nil, err
	}
	linkage.SubDepartmentIDs = ids
	return &linkage, nil
}

func (r *identityRepository) collectIDs(ctx context.Context, query string, arg any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
