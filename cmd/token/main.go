// Command token mints access tokens signed with the configured secret, for
// local testing against the API without the external auth provider.
package main

import (
	"context"
	"fmt"
	"os"

	"welearn/internal/config"
	"welearn/internal/domain"
	"welearn/internal/service"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:          "token <subject-id>",
		Short:        "Print a signed access token for a user or admin id",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(role)
			if r != domain.RoleLearner && r != domain.RoleAdmin {
				return fmt.Errorf("unknown role %q, want %q or %q", role, domain.RoleLearner, domain.RoleAdmin)
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			auth, err := service.NewAuthService(cfg.Auth)
			if err != nil {
				return err
			}
			token, err := auth.CreateJWT(cmd.Context(), args[0], r, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", string(domain.RoleLearner), "token role: user or admin")
	return cmd
}
