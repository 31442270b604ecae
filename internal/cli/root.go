// Package cli implements the learner command line: login, quiz browsing,
// playing quizzes, daily rewards and rankings.
package cli

import (
	"errors"
	"fmt"
	"os"

	"welearn/internal/client"
	"welearn/internal/session"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	a := newApp()
	defer a.close()

	err := newRootCmd(a).Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "welearn",
		Short:         "Learn algorithms one quiz at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "directory containing config.yaml")
	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newQuizzesCmd(a),
		newPlayCmd(a),
		newRewardsCmd(a),
		newClaimCmd(a),
		newRankingsCmd(a),
	)
	return cmd
}

// userMessage turns an error into the text shown to the learner. Server
// messages are passed through verbatim; transport failures are not.
func userMessage(err error) string {
	var (
		apiErr   *client.APIError
		coinsErr *session.InsufficientCoinsError
	)
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "Something went wrong. Please try again later."
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.As(err, &coinsErr):
		return fmt.Sprintf("You need %d more coins to reveal the answer.", coinsErr.Shortfall())
	case errors.Is(err, session.ErrStale):
		return "The quiz changed before the request finished."
	default:
		return err.Error()
	}
}
