package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var visitsHistory bool

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Show site traffic aggregates",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.Visits.FetchAll(cmd.Context()); err != nil {
			// Partial aggregates still render below.
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		w := newTable()
		if today := c.Visits.Today(); today != nil {
			fmt.Fprintf(w, "Today (%s):\t%d visits\n", today.Date, today.TotalVisits)
		}
		if monthly := c.Visits.Monthly(); monthly != nil {
			fmt.Fprintf(w, "New users this month:\t%d\n", monthly.TotalRegistrations)
		}

		if visitsHistory {
			history := c.Visits.History()
			if len(history) > 0 {
				fmt.Fprintln(w)
				fmt.Fprintln(w, "DATE\tVISITS")
				for _, day := range history {
					fmt.Fprintf(w, "%s\t%d\n", day.Date, day.Visits)
				}
			}
		}
		return w.Flush()
	},
}

func init() {
	visitsCmd.Flags().BoolVar(&visitsHistory, "history", false, "include the per-day visit history")
	rootCmd.AddCommand(visitsCmd)
}
