package dto

import "github.com/spec-kit/ops-analytics/internal/domain"

// SummaryResponse is the headline counts payload.
type SummaryResponse struct {
	TotalUsers         int64 `json:"total_users"`
	ActiveTickets      int64 `json:"active_tickets"`
	CompletedTickets   int64 `json:"completed_tickets"`
	CompletedTasks     int64 `json:"completed_tasks"`
	PendingTasks       int64 `json:"pending_tasks"`
	FaqSatisfactionPct int64 `json:"faq_satisfaction_pct"`
}

// TimeSeriesPoint is one day of activity.
type TimeSeriesPoint struct {
	Label                   string `json:"label"`
	TasksCompleted          int64  `json:"tasks_completed"`
	TicketsClosed           int64  `json:"tickets_closed"`
	AvgFirstResponseSeconds int64  `json:"avg_first_response_seconds"`
}

// Kpi is a formatted headline metric.
type Kpi struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DepartmentPerformance is one leaderboard row.
type DepartmentPerformance struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
	Score        int64  `json:"score"`
}

// AnalyticsResponse bundles KPIs and the leaderboard.
type AnalyticsResponse struct {
	Kpis                  []Kpi                   `json:"kpis"`
	DepartmentPerformance []DepartmentPerformance `json:"department_performance"`
}

// NewSummaryResponse maps a domain summary.
func NewSummaryResponse(s *domain.Summary) SummaryResponse {
	return SummaryResponse{
		TotalUsers:         s.TotalUsers,
		ActiveTickets:      s.ActiveTickets,
		CompletedTickets:   s.CompletedTickets,
		CompletedTasks:     s.CompletedTasks,
		PendingTasks:       s.PendingTasks,
		FaqSatisfactionPct: s.FaqSatisfactionPct,
	}
}

// NewTimeSeries maps domain points, preserving order.
func NewTimeSeries(points []domain.TimeSeriesPoint) []TimeSeriesPoint {
	out := make([]TimeSeriesPoint, 0, len(points))
	for _, p := range points {
		out = append(out, TimeSeriesPoint(p))
	}
	return out
}

// NewAnalyticsResponse maps domain analytics.
func NewAnalyticsResponse(a *domain.Analytics) AnalyticsResponse {
	resp := AnalyticsResponse{
		Kpis:                  make([]Kpi, 0, len(a.Kpis)),
		DepartmentPerformance: make([]DepartmentPerformance, 0, len(a.DepartmentPerformance)),
	}
	for _, k := range a.Kpis {
		resp.Kpis = append(resp.Kpis, Kpi(k))
	}
	for _, d := range a.DepartmentPerformance {
		resp.DepartmentPerformance = append(resp.DepartmentPerformance, DepartmentPerformance(d))
	}
	return resp
}
