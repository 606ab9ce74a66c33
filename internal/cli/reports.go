package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spec-kit/ops-analytics/internal/api/dto"
	"github.com/spec-kit/ops-analytics/internal/domain"
	"github.com/spec-kit/ops-analytics/internal/service"
)

// SummaryCmd returns the summary command
func SummaryCmd(backend Backend) *cobra.Command {
	var (
		who    identityFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show headline counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter, closeFn, err := openReporter(cmd, backend, ReportNeeds{})
			if err != nil {
				return err
			}
			defer closeFn()

			summary, err := reporter.GetSummary(cmd.Context(), who.identity())
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), dto.NewSummaryResponse(summary))
			}
			renderSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	who.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the API JSON payload")
	return cmd
}

// TimeSeriesCmd returns the timeseries command
func TimeSeriesCmd(backend Backend) *cobra.Command {
	var (
		who       identityFlags
		rangeFlag string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "timeseries",
		Short: "Show daily task and ticket activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter, closeFn, err := openReporter(cmd, backend, ReportNeeds{})
			if err != nil {
				return err
			}
			defer closeFn()

			days := service.ParseDayRangeOr(rangeFlag, reporter.DefaultDays())
			points, err := reporter.GetTimeSeries(cmd.Context(), who.identity(), days)
			if err != nil {
				return fmt.Errorf("timeseries: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), dto.NewTimeSeries(points))
			}
			renderTimeSeries(cmd.OutOrStdout(), points)
			return nil
		},
	}
	who.register(cmd)
	cmd.Flags().StringVar(&rangeFlag, "range", "7d", "Day range as {n}d")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the API JSON payload")
	return cmd
}

// AnalyticsCmd returns the analytics command
func AnalyticsCmd(backend Backend) *cobra.Command {
	var (
		who       identityFlags
		rangeFlag string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show KPIs and the department leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter, closeFn, err := openReporter(cmd, backend, ReportNeeds{Activity: true})
			if err != nil {
				return err
			}
			defer closeFn()

			days := service.ParseDayRangeOr(rangeFlag, reporter.DefaultDays())
			analytics, err := reporter.GetAnalytics(cmd.Context(), who.identity(), days)
			if err != nil {
				return fmt.Errorf("analytics: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), dto.NewAnalyticsResponse(analytics))
			}
			renderAnalytics(cmd.OutOrStdout(), analytics)
			return nil
		},
	}
	who.register(cmd)
	cmd.Flags().StringVar(&rangeFlag, "range", "7d", "Day range as {n}d")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the API JSON payload")
	return cmd
}

var (
	heading = color.New(color.Bold)
	muted   = color.New(color.FgHiBlack)
)

func renderSummary(w io.Writer, s *domain.Summary) {
	heading.Fprintln(w, "Summary")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Users\t%s\n", service.FormatCount(s.TotalUsers))
	fmt.Fprintf(tw, "  Active tickets\t%s\n", service.FormatCount(s.ActiveTickets))
	fmt.Fprintf(tw, "  Completed tickets\t%s\n", service.FormatCount(s.CompletedTickets))
	fmt.Fprintf(tw, "  Completed tasks\t%s\n", service.FormatCount(s.CompletedTasks))
	fmt.Fprintf(tw, "  Pending tasks\t%s\n", service.FormatCount(s.PendingTasks))
	fmt.Fprintf(tw, "  FAQ satisfaction\t%s\n", colorPercent(s.FaqSatisfactionPct))
	_ = tw.Flush()
}

func renderTimeSeries(w io.Writer, points []domain.TimeSeriesPoint) {
	heading.Fprintf(w, "Activity, last %d days\n", len(points))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  DAY\tTASKS\tTICKETS\tAVG FIRST RESPONSE")
	for _, p := range points {
		line := fmt.Sprintf("  %s\t%d\t%d\t%s", p.Label, p.TasksCompleted, p.TicketsClosed, service.FormatDuration(p.AvgFirstResponseSeconds))
		if p.TasksCompleted == 0 && p.TicketsClosed == 0 {
			line = muted.Sprint(line)
		}
		fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()
}

func renderAnalytics(w io.Writer, a *domain.Analytics) {
	heading.Fprintln(w, "KPIs")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range a.Kpis {
		fmt.Fprintf(tw, "  %s\t%s\n", k.Label, k.Value)
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	heading.Fprintln(w, "Department performance")
	if len(a.DepartmentPerformance) == 0 {
		muted.Fprintln(w, "  (no activity in range)")
		return
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, d := range a.DepartmentPerformance {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\n", i+1, d.Name, colorPercent(d.Score))
	}
	_ = tw.Flush()
}

func colorPercent(pct int64) string {
	value := service.FormatPercent(pct)
	switch {
	case pct >= 75:
		return color.New(color.FgGreen).Sprint(value)
	case pct >= 40:
		return color.New(color.FgYellow).Sprint(value)
	default:
		return color.New(color.FgRed).Sprint(value)
	}
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"data": payload})
}
