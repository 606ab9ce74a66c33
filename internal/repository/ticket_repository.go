package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

// TicketRepository reads ticket facts for reports.
type TicketRepository interface {
	CountByStatus(ctx context.Context, statuses []domain.TicketStatus, scope domain.Scope) (int64, error)
	FirstResponseTimesInWindow(ctx context.Context, window domain.TimeWindow, scope domain.Scope) ([]domain.FirstResponse, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func countTicketsQuery(statuses []domain.TicketStatus, scope domain.Scope) sq.SelectBuilder {
	b := psql.Select("COUNT(*)").From("tickets t").
		Where(sq.Eq{"t.status": ticketStatusValues(statuses)})
	return applyScope(b, scope, "t.department_id", scope.AllIDs())
}

// firstResponseQuery buckets each ticket by its earliest answer, not by its
// creation time.
func firstResponseQuery(window domain.TimeWindow, scope domain.Scope) sq.SelectBuilder {
	b := psql.Select("t.id::text", "t.department_id::text", "t.created_at", "fa.first_answered_at").
		From("tickets t").
		JoinClause("JOIN (SELECT ticket_id, MIN(answered_at) AS first_answered_at FROM ticket_answers GROUP BY ticket_id) fa ON fa.ticket_id = t.id").
		Where(sq.GtOrEq{"fa.first_answered_at": window.From}).
		Where(sq.Lt{"fa.first_answered_at": window.To}).
		OrderBy("fa.first_answered_at ASC", "t.id ASC")
	return applyScope(b, scope, "t.department_id", scope.AllIDs())
}

func (r *ticketRepository) CountByStatus(ctx context.Context, statuses []domain.TicketStatus, scope domain.Scope) (int64, error) {
	query, args, err := countTicketsQuery(statuses, scope).ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *ticketRepository) FirstResponseTimesInWindow(ctx context.Context, window domain.TimeWindow, scope domain.Scope) ([]domain.FirstResponse, error) {
	query, args, err := firstResponseQuery(window, scope).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.FirstResponse{}
	for rows.Next() {
		var fr domain.FirstResponse
		if err := rows.Scan(&fr.TicketID, &fr.DepartmentID, &fr.CreatedAt, &fr.FirstAnsweredAt); err != nil {
			return nil, err
		}
		result = append(result, fr)
	}
	return result, rows.Err()
}
