package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var paymentsFilter string

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Browse and settle payments",
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all payments",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.Payments.FetchAll(cmd.Context()); err != nil {
			return err
		}
		payments, err := applyFilter(paymentsFilter, c.Payments.Items())
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "ORDER CODE\tBUYER\tAMOUNT\tSTATUS\tCREATED")
		for _, p := range payments {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n",
				p.OrderCode, p.BuyerName, p.Amount, p.Status, p.CreatedAt)
		}
		return w.Flush()
	},
}

var paymentsConfirmCmd = &cobra.Command{
	Use:   "confirm <order-code>",
	Short: "Confirm a premium payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := parseOrderCode(args[0])
		if err != nil {
			return err
		}

		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.ConfirmPayment(cmd.Context(), code); err != nil {
			return err
		}
		fmt.Printf("Payment %d confirmed.\n", code)
		return nil
	},
}

var paymentsCancelCmd = &cobra.Command{
	Use:   "cancel <order-code>",
	Short: "Cancel a pending payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := parseOrderCode(args[0])
		if err != nil {
			return err
		}

		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.CancelPayment(cmd.Context(), code); err != nil {
			return err
		}
		fmt.Printf("Payment %d cancelled.\n", code)
		return nil
	},
}

var paymentsStatusCmd = &cobra.Command{
	Use:   "status <order-code>",
	Short: "Query the gateway's live status for a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := parseOrderCode(args[0])
		if err != nil {
			return err
		}

		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		status, err := c.Payments.LiveStatus(cmd.Context(), code)
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	},
}

func parseOrderCode(arg string) (int64, error) {
	code, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order code %q: expected a number", arg)
	}
	return code, nil
}

func init() {
	paymentsListCmd.Flags().StringVar(&paymentsFilter, "filter", "", `CEL filter, e.g. 'record.status == "Pending"'`)
	paymentsCmd.AddCommand(paymentsListCmd, paymentsConfirmCmd, paymentsCancelCmd, paymentsStatusCmd)
	rootCmd.AddCommand(paymentsCmd)
}
