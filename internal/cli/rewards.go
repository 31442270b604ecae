package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"welearn/internal/reward"
	"welearn/internal/validation"

	"github.com/spf13/cobra"
)

const monthLayout = "2006-01"

func newRewardsCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Show the daily reward calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.requireLogin()
			if err != nil {
				return err
			}
			today := a.today()
			if month == "" {
				month = today.Format(monthLayout)
			}
			if errs := validation.NewValidator().ValidateMonth(month); len(errs) > 0 {
				return errs
			}
			first, err := time.ParseInLocation(monthLayout, month, a.location())
			if err != nil {
				return err
			}

			history, err := a.api.ClaimHistory(cmd.Context(), id.UserID, month)
			if err != nil {
				return err
			}
			claimed := reward.NewDateSet(history.ClaimedDates...)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  (weekday %d coins, weekend %d coins)\n", first.Format("January 2006"), reward.WeekdayReward, reward.WeekendReward)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDAY\tREWARD\tSTATUS")
			for _, day := range reward.Calendar(first.Year(), first.Month(), today, claimed) {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", reward.DateKey(day.Date), day.Date.Format("Mon"), day.Reward, day.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM (default current month)")
	return cmd
}

func newClaimCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "claim",
		Short: "Claim today's reward",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.requireLogin()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			today := a.today()

			history, err := a.api.ClaimHistory(ctx, id.UserID, today.Format(monthLayout))
			if err != nil {
				return err
			}
			claimer := reward.NewClaimer(a.api, a.store, reward.NewDateSet(history.ClaimedDates...),
				reward.WithClock(a.today),
				reward.WithLogger(a.log),
			)
			if !claimer.CanClaim() {
				fmt.Fprintln(cmd.OutOrStdout(), "You already claimed today's reward. Come back tomorrow!")
				return nil
			}
			resp, err := claimer.Claim(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Claimed %d coins for %s. Balance: %d coins\n",
				reward.RewardForDate(today), resp.ClaimedDate, resp.NewCoins)
			return nil
		},
	}
}
