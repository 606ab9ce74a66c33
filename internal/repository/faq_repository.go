package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

// FaqRepository reads FAQ feedback totals.
type FaqRepository interface {
	SatisfactionTotals(ctx context.Context, scope domain.Scope) (domain.SatisfactionTotals, error)
}

type faqRepository struct {
	pool *pgxpool.Pool
}

// NewFaqRepository instantiates repository.
func NewFaqRepository(pool *pgxpool.Pool) FaqRepository {
	return &faqRepository{pool: pool}
}

func satisfactionQuery(scope domain.Scope) sq.SelectBuilder {
	b := psql.Select("COALESCE(SUM(f.satisfaction), 0)", "COALESCE(SUM(f.dissatisfaction), 0)").
		From("faq_questions f")
	return applyScope(b, scope, "f.department_id", scope.AllIDs())
}

func (r *faqRepository) SatisfactionTotals(ctx context.Context, scope domain.Scope) (domain.SatisfactionTotals, error) {
	var totals domain.SatisfactionTotals
	query, args, err := satisfactionQuery(scope).ToSql()
	if err != nil {
		return totals, err
	}
	err = r.pool.QueryRow(ctx, query, args...).Scan(&totals.Satisfaction, &totals.Dissatisfaction)
	return totals, err
}
