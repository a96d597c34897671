package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the admin backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()

		email := loginEmail
		password := loginPassword
		reader := bufio.NewReader(os.Stdin)
		if email == "" {
			fmt.Print("Email: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read email: %w", err)
			}
			email = strings.TrimSpace(line)
		}
		if password == "" {
			fmt.Print("Password: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}

		ok, err := c.Session.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("login failed: credentials rejected")
		}

		p := c.Session.Principal()
		fmt.Printf("Logged in as %s (%s)\n", p.FullName, p.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()

		c.Session.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated principal",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole(cmd.Context())
		if err != nil {
			return err
		}
		defer c.cleanup()

		p := c.Session.Principal()
		if p == nil {
			if err := c.Session.Err(); err != nil {
				return fmt.Errorf("session unresolved: %w", err)
			}
			return fmt.Errorf("not logged in")
		}

		w := newTable()
		fmt.Fprintf(w, "User ID:\t%d\n", p.UserID)
		fmt.Fprintf(w, "Name:\t%s\n", p.FullName)
		fmt.Fprintf(w, "Email:\t%s\n", p.Email)
		fmt.Fprintf(w, "Role:\t%s\n", p.Role)
		fmt.Fprintf(w, "Status:\t%s\n", p.Status)
		return w.Flush()
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "admin email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "admin password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
