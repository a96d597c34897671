package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var auditLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show console runtime counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()

		snap := c.Stats.Get()
		w := newTable()
		fmt.Fprintf(w, "Session:\t%s\n", c.Session.State())
		fmt.Fprintf(w, "Fetches:\t%d\n", snap.Fetches)
		fmt.Fprintf(w, "Mutations:\t%d\n", snap.Mutations)
		fmt.Fprintf(w, "Errors:\t%d\n", snap.Errors)
		fmt.Fprintf(w, "Auth rejections:\t%d\n", snap.Unauthorized)
		return w.Flush()
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the local mutation audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()

		if c.cfg.AuditDB == "" {
			return fmt.Errorf("audit trail disabled: set audit_db in the config")
		}

		entries, err := c.Audit().Recent(cmd.Context(), auditLimit)
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "TIME\tACTOR\tACTION\tTARGET\tOUTCOME\tDETAIL")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Actor, e.Action, e.Target, e.Outcome, e.Detail)
		}
		return w.Flush()
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum entries to show")
	rootCmd.AddCommand(statsCmd, auditCmd)
}
