package repository

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// inIDs restricts column to ids. An empty id set matches nothing.
func inIDs(column string, ids []string) sq.Sqlizer {
	if len(ids) == 0 {
		return sq.Expr("FALSE")
	}
	return sq.Eq{column: ids}
}

// applyScope adds the department predicate for a scoped request. Unscoped
// requests are left untouched.
func applyScope(b sq.SelectBuilder, scope domain.Scope, column string, ids []string) sq.SelectBuilder {
	if scope.IsUnscoped() {
		return b
	}
	return b.Where(inIDs(column, ids))
}

func ticketStatusValues(statuses []domain.TicketStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func taskStatusValues(statuses []domain.TaskStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
