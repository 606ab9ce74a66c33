package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

// Reporter produces dashboard reports.
type Reporter interface {
	GetSummary(ctx context.Context, identity *domain.Identity) (*domain.Summary, error)
	GetTimeSeries(ctx context.Context, identity *domain.Identity, days int) ([]domain.TimeSeriesPoint, error)
	GetAnalytics(ctx context.Context, identity *domain.Identity, days int) (*domain.Analytics, error)
	DefaultDays() int
}

// TokenIssuer mints bearer tokens for the HTTP API.
type TokenIssuer interface {
	GenerateToken(identity domain.Identity) (string, time.Time, error)
}

// ReportNeeds lists the optional stores a command reads. Postgres is always
// opened; the activity store only backs the analytics KPIs.
type ReportNeeds struct {
	Activity bool
}

// Backend opens the collaborators a command needs. The returned close
// function releases connections.
type Backend struct {
	OpenReporter func(ctx context.Context, needs ReportNeeds) (Reporter, func(), error)
	OpenTokens   func() (TokenIssuer, error)
}

// RootCmd assembles reportctl.
func RootCmd(backend Backend, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "reportctl",
		Short:   "Compute ops dashboard reports from the command line",
		Version: version,
		Long: `reportctl computes the same role-scoped reports the dashboard API serves.
Without an identity flag reports are unscoped, which is what scheduled jobs use.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(SummaryCmd(backend))
	rootCmd.AddCommand(TimeSeriesCmd(backend))
	rootCmd.AddCommand(AnalyticsCmd(backend))
	rootCmd.AddCommand(TokenCmd(backend))
	return rootCmd
}

// identityFlags selects who a report is computed for.
type identityFlags struct {
	supervisor string
	employee   string
	admin      bool
}

func (f *identityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.supervisor, "supervisor", "", "Compute the report as this supervisor")
	cmd.Flags().StringVar(&f.employee, "employee", "", "Compute the report as this employee")
	cmd.Flags().BoolVar(&f.admin, "admin", false, "Compute the report as an admin")
	cmd.MarkFlagsMutuallyExclusive("supervisor", "employee", "admin")
}

// identity returns nil when no flag is set, meaning an unscoped system caller.
func (f *identityFlags) identity() *domain.Identity {
	switch {
	case f.supervisor != "":
		return domain.SupervisorIdentity(f.supervisor)
	case f.employee != "":
		return domain.EmployeeIdentity(f.employee)
	case f.admin:
		return domain.AdminIdentity()
	}
	return nil
}

func openReporter(cmd *cobra.Command, backend Backend, needs ReportNeeds) (Reporter, func(), error) {
	if backend.OpenReporter == nil {
		return nil, nil, errors.New("no report backend configured")
	}
	return backend.OpenReporter(cmd.Context(), needs)
}
