package service

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

const (
	KpiAvgResponseTime    = "Avg Response Time"
	KpiTaskCompletionRate = "Task Completion Rate"
	KpiFaqSatisfaction    = "FAQ Satisfaction"
	KpiActiveUsers        = "Active Users"
)

var countPrinter = message.NewPrinter(language.English)

// FormatDuration renders whole seconds as "{h}h {m}m", dropping seconds.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}

// FormatPercent renders a rounded percentage.
func FormatPercent(pct int64) string {
	return fmt.Sprintf("%d%%", pct)
}

// BuildKpis returns the four headline metrics in display order.
func BuildKpis(avgResponseSeconds, completionRate, satisfactionPct, activeUsers int64) []domain.Kpi {
	return []domain.Kpi{
		{Label: KpiAvgResponseTime, Value: FormatDuration(avgResponseSeconds)},
		{Label: KpiTaskCompletionRate, Value: FormatPercent(completionRate)},
		{Label: KpiFaqSatisfaction, Value: FormatPercent(satisfactionPct)},
		{Label: KpiActiveUsers, Value: FormatCount(activeUsers)},
	}
}
