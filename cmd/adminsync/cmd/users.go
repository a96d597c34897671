package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	usersFilter string
	usersYes    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.Users.FetchAll(cmd.Context()); err != nil {
			return err
		}
		users, err := applyFilter(usersFilter, c.Users.Items())
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tROLE")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.UserID, u.FullName, u.Email, u.Status, u.Role)
		}
		return w.Flush()
	},
}

var usersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one user's full profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		u := c.Users.Detail(cmd.Context(), id)
		if u == nil {
			return fmt.Errorf("user %d not found: %s", id, c.Users.Err())
		}

		w := newTable()
		fmt.Fprintf(w, "User ID:\t%d\n", u.UserID)
		fmt.Fprintf(w, "Username:\t%s\n", u.UserName)
		fmt.Fprintf(w, "Name:\t%s\n", u.FullName)
		fmt.Fprintf(w, "Email:\t%s\n", u.Email)
		fmt.Fprintf(w, "Phone:\t%s\n", u.PhoneNumber)
		fmt.Fprintf(w, "Address:\t%s\n", u.Address)
		fmt.Fprintf(w, "Status:\t%s\n", u.Status)
		fmt.Fprintf(w, "Role:\t%s\n", u.Role)
		return w.Flush()
	},
}

var usersBanCmd = &cobra.Command{
	Use:   "ban <id>",
	Short: "Deactivate a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return userTransition(cmd, args[0], "ban") },
}

var usersUnbanCmd = &cobra.Command{
	Use:   "unban <id>",
	Short: "Reactivate a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return userTransition(cmd, args[0], "unban") },
}

func userTransition(cmd *cobra.Command, arg, action string) error {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid user id %q", arg)
	}

	c, err := openConsole(cmd.Context())
	if err != nil {
		return err
	}
	defer c.cleanup()
	if err := c.requireSession(); err != nil {
		return err
	}

	if action == "ban" {
		err = c.BanUser(cmd.Context(), id)
	} else {
		err = c.UnbanUser(cmd.Context(), id)
	}
	if err != nil {
		return err
	}
	fmt.Printf("User %d %sned.\n", id, action)
	return nil
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		if !usersYes {
			return fmt.Errorf("deleting user %d is irreversible; re-run with --yes to confirm", id)
		}

		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()
		if err := c.requireSession(); err != nil {
			return err
		}

		if err := c.DeleteUser(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("User %d deleted.\n", id)
		return nil
	},
}

func init() {
	usersListCmd.Flags().StringVar(&usersFilter, "filter", "", `CEL filter, e.g. 'record.status == "Inactive"'`)
	usersDeleteCmd.Flags().BoolVar(&usersYes, "yes", false, "confirm deletion")
	usersCmd.AddCommand(usersListCmd, usersShowCmd, usersBanCmd, usersUnbanCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}
