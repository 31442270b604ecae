package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"welearn/internal/learner"
	"welearn/internal/table"

	"github.com/spf13/cobra"
)

var quizColumns = []string{"id", "title", "category", "difficulty", "status", "attempts", "timeSpent"}

func newQuizzesCmd(a *app) *cobra.Command {
	var (
		search   string
		sortKey  string
		desc     bool
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List quizzes with your progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireLogin(); err != nil {
				return err
			}
			dash := learner.NewDashboard(a.api, a.store, a.log)
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printProgress(out, dash.Progress())

			state := table.NewSortState(sortKey, "attempts", "timeSpent")
			if desc != (state.Direction == table.Desc) {
				state.Toggle(sortKey)
			}
			rows := state.Apply(table.Filter(dash.Rows(), search))
			rows, pages := table.Paginate(rows, page, pageSize)

			fmt.Fprintln(out)
			printRows(out, quizColumns, rows)
			if pages > 1 {
				fmt.Fprintf(out, "Page %d of %d\n", page, pages)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "only show quizzes matching this text")
	cmd.Flags().StringVar(&sortKey, "sort", "category", "column to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "rows per page, 0 for all")
	return cmd
}

func printProgress(out io.Writer, progress []learner.CategoryProgress) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCOMPLETED")
	for _, p := range progress {
		fmt.Fprintf(w, "%s\t%d/%d\n", p.Category, p.Completed, p.Total)
	}
	w.Flush()
}

func printRows(out io.Writer, columns []string, rows []table.Row) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, c := range columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, c := range columns {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, row[c])
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
