package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	feedbackFilter string
	feedbackYes    bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Moderate product feedback",
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all feedback entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.Feedback.FetchAll(cmd.Context()); err != nil {
			return err
		}
		entries, err := applyFilter(feedbackFilter, c.Feedback.Items())
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tUSER\tPRODUCT\tRATING\tCOMMENT")
		for _, f := range entries {
			comment := ""
			if f.Description != nil {
				comment = *f.Description
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				f.FeedbackID, f.UserName, f.ProductName, f.Rating, comment)
		}
		return w.Flush()
	},
}

var feedbackDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a feedback entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !feedbackYes {
			return fmt.Errorf("deleting feedback %s is irreversible; re-run with --yes to confirm", args[0])
		}

		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.DeleteFeedback(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Feedback %s deleted.\n", args[0])
		return nil
	},
}

func init() {
	feedbackListCmd.Flags().StringVar(&feedbackFilter, "filter", "", `CEL filter, e.g. 'record.rating <= 2'`)
	feedbackDeleteCmd.Flags().BoolVar(&feedbackYes, "yes", false, "confirm deletion")
	feedbackCmd.AddCommand(feedbackListCmd, feedbackDeleteCmd)
	rootCmd.AddCommand(feedbackCmd)
}
