package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	productsFilter string
	productsYes    bool

	productName        string
	productCategory    string
	productPrice       string
	productStock       string
	productDescription string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.Products.FetchAll(cmd.Context()); err != nil {
			return err
		}
		products, err := applyFilter(productsFilter, c.Products.Items())
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tSTATUS")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%s\n",
				p.ProductID, p.ProductName, p.Category, p.Price, p.Stock, p.Status)
		}
		return w.Flush()
	},
}

var productsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one product",
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

		p := c.Products.Detail(cmd.Context(), args[0])
		if p == nil {
			return fmt.Errorf("product %s not found: %s", args[0], c.Products.Err())
		}

		w := newTable()
		fmt.Fprintf(w, "ID:\t%s\n", p.ProductID)
		fmt.Fprintf(w, "Name:\t%s\n", p.ProductName)
		fmt.Fprintf(w, "Category:\t%s\n", p.Category)
		fmt.Fprintf(w, "Price:\t%.2f\n", p.Price)
		fmt.Fprintf(w, "Stock:\t%d\n", p.Stock)
		fmt.Fprintf(w, "Status:\t%s\n", p.Status)
		fmt.Fprintf(w, "Description:\t%s\n", p.Description)
		return w.Flush()
	},
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		if productName == "" {
			return fmt.Errorf("--name is required")
		}

		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.CreateProduct(cmd.Context(), productFields()); err != nil {
			return err
		}
		fmt.Printf("Product %q created.\n", productName)
		return nil
	},
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product",
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

		if err := c.UpdateProduct(cmd.Context(), args[0], productFields()); err != nil {
			return err
		}
		fmt.Printf("Product %s updated.\n", args[0])
		return nil
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !productsYes {
			return fmt.Errorf("deleting product %s is irreversible; re-run with --yes to confirm", args[0])
		}

		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.DeleteProduct(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Product %s deleted.\n", args[0])
		return nil
	},
}

// productFields collects the set flags into the form fields the backend's
// product endpoints accept. Unset flags are omitted so updates stay partial.
func productFields() map[string]string {
	fields := make(map[string]string)
	if productName != "" {
		fields["productName"] = productName
	}
	if productCategory != "" {
		fields["category"] = productCategory
	}
	if productPrice != "" {
		fields["price"] = productPrice
	}
	if productStock != "" {
		fields["stock"] = productStock
	}
	if productDescription != "" {
		fields["description"] = productDescription
	}
	return fields
}

func init() {
	productsListCmd.Flags().StringVar(&productsFilter, "filter", "", `CEL filter, e.g. 'record.stock == 0'`)
	productsDeleteCmd.Flags().BoolVar(&productsYes, "yes", false, "confirm deletion")
	for _, c := range []*cobra.Command{productsCreateCmd, productsUpdateCmd} {
		c.Flags().StringVar(&productName, "name", "", "product name")
		c.Flags().StringVar(&productCategory, "category", "", "product category")
		c.Flags().StringVar(&productPrice, "price", "", "unit price")
		c.Flags().StringVar(&productStock, "stock", "", "stock count")
		c.Flags().StringVar(&productDescription, "description", "", "description")
	}
	productsCmd.AddCommand(productsListCmd, productsShowCmd, productsCreateCmd, productsUpdateCmd, productsDeleteCmd)
	rootCmd.AddCommand(productsCmd)
}
