package cli

import (
	"fmt"
	"strings"

	"welearn/internal/domain"
	"welearn/internal/identity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an access token issued by the auth provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("an access token is required")
			}

			// The token must be in the store before the profile call reads it.
			if err := a.store.Save(ctx, identity.Identity{AuthToken: token, Role: string(domain.RoleLearner)}); err != nil {
				return err
			}
			me, err := a.api.Me(ctx)
			if err != nil {
				_ = a.store.Clear(ctx)
				return err
			}
			summary, err := a.api.ProgressSummary(ctx, me.ID)
			if err != nil {
				_ = a.store.Clear(ctx)
				return err
			}

			id := identity.Identity{
				AuthToken:        token,
				Role:             string(domain.RoleLearner),
				Username:         me.Username,
				UserID:           me.ID,
				Coins:            me.Coins,
				CompletedQuizzes: summary.CompletedIDs(),
			}
			if err := a.store.Save(ctx, id); err != nil {
				return err
			}
			a.log.Info("Learner logged in", zap.String("userID", me.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You have %d coins.\n", me.Username, me.Coins)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in learner",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.store.Identity()
			out := cmd.OutOrStdout()
			if !id.LoggedIn() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(out, "%s (%s)\nCoins: %d\nCompleted quizzes: %d\n",
				id.Username, id.UserID, id.Coins, len(id.CompletedQuizzes))
			return nil
		},
	}
}
