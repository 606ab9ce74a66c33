package domain

import "time"

// TimeWindow is the half-open interval [From, To).
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Includes reports whether t falls in the window.
func (w TimeWindow) Includes(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Summary is the headline count report.
type Summary struct {
	TotalUsers         int64
	ActiveTickets      int64
	CompletedTickets   int64
	CompletedTasks     int64
	PendingTasks       int64
	FaqSatisfactionPct int64
}

// TimeSeriesPoint is one calendar day of activity.
type TimeSeriesPoint struct {
	Label                   string
	TasksCompleted          int64
	TicketsClosed           int64
	AvgFirstResponseSeconds int64
}

// DepartmentPerformance is one leaderboard entry.
type DepartmentPerformance struct {
	DepartmentID string
	Name         string
	Score        int64
}

// Kpi is a formatted headline metric.
type Kpi struct {
	Label string
	Value string
}

// Analytics bundles the KPI strip and the department leaderboard.
type Analytics struct {
	Kpis                  []Kpi
	DepartmentPerformance []DepartmentPerformance
}
