package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spec-kit/ops-analytics/internal/domain"
)

// TokenCmd returns the token command
func TokenCmd(backend Backend) *cobra.Command {
	var (
		role    string
		subject string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the dashboard API",
		Example: `  reportctl token --role SUPERVISOR --subject 4f6c...
  reportctl token --role ADMIN`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if backend.OpenTokens == nil {
				return fmt.Errorf("no token backend configured")
			}
			identity := domain.Identity{Role: domain.Role(strings.ToUpper(role)), SubjectID: subject}
			if !identity.Role.Valid() {
				return fmt.Errorf("unknown role %q (want ADMIN, SUPERVISOR or EMPLOYEE)", role)
			}

			tokens, err := backend.OpenTokens()
			if err != nil {
				return err
			}
			token, expiresAt, err := tokens.GenerateToken(identity)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.ErrOrStderr(), color.New(color.FgHiBlack).Sprintf("expires %s", expiresAt.Format(time.RFC3339)))
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "ADMIN, SUPERVISOR or EMPLOYEE")
	cmd.Flags().StringVar(&subject, "subject", "", "Supervisor or employee id")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
