package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ordersFilter string

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Browse customer orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.Orders.FetchAll(cmd.Context()); err != nil {
			return err
		}
		orders, err := applyFilter(ordersFilter, c.Orders.Items())
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "ORDER\tUSER\tITEMS\tTOTAL\tSTATUS\tDATE")
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\t%s\n",
				o.OrderID, o.UserName, len(o.Items), o.Total, o.Status, o.OrderDate)
		}
		return w.Flush()
	},
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show one order with its line items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		o := c.Orders.Detail(cmd.Context(), args[0])
		if o == nil {
			return fmt.Errorf("order %s not found: %s", args[0], c.Orders.Err())
		}

		w := newTable()
		fmt.Fprintf(w, "Order:\t%s\n", o.OrderID)
		fmt.Fprintf(w, "User:\t%s (%d)\n", o.UserName, o.UserID)
		fmt.Fprintf(w, "Status:\t%s\n", o.Status)
		fmt.Fprintf(w, "Date:\t%s\n", o.OrderDate)
		fmt.Fprintf(w, "Total:\t%.2f\n", o.Total)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE")
		for _, item := range o.Items {
			fmt.Fprintf(w, "%s\t%d\t%.2f\n", item.ProductName, item.Quantity, item.Price)
		}
		return w.Flush()
	},
}

func init() {
	ordersListCmd.Flags().StringVar(&ordersFilter, "filter", "", `CEL filter, e.g. 'record.totalPrice > 100.0'`)
	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd)
	rootCmd.AddCommand(ordersCmd)
}
