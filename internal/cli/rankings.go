package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRankingsCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show the leaderboard of every category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireLogin(); err != nil {
				return err
			}
			resp, err := a.api.Rankings(cmd.Context())
			if err != nil {
				return err
			}

			me := a.store.Identity().UserID
			out := cmd.OutOrStdout()
			shown := 0
			for _, r := range resp.Rankings {
				if category != "" && !strings.EqualFold(r.Category, category) {
					continue
				}
				shown++
				fmt.Fprintf(out, "\n%s\n", r.Category)
				if len(r.Entries) == 0 {
					fmt.Fprintln(out, "  no completions yet")
					continue
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "RANK\tLEARNER\tCOMPLETED\tTIME\tATTEMPTS")
				for _, e := range r.Entries {
					name := e.Username
					if e.UserID == me {
						name += " (you)"
					}
					fmt.Fprintf(w, "%d\t%s\t%d\t%ds\t%d\n", e.Rank, name, e.Completed, e.TotalTimeSpent, e.Attempts)
				}
				w.Flush()
			}
			if shown == 0 {
				fmt.Fprintln(out, "No rankings to show.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only show this category")
	return cmd
}
