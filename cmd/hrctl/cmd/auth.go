package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	username string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the HR backend",
	Long: `Signs in with a username and password and stores the session in the local
credential file. The password is read from --password, then HRCTL_PASSWORD,
then prompted for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := fromContext(cmd.Context())

		user := username
		if user == "" {
			var err error
			user, err = pterm.DefaultInteractiveTextInput.Show("Username")
			if err != nil {
				return fmt.Errorf("read username: %w", err)
			}
		}
		pass := password
		if pass == "" {
			pass = os.Getenv("HRCTL_PASSWORD")
		}
		if pass == "" {
			var err error
			pass, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
		}

		s, err := a.portal.SignIn(cmd.Context(), strings.TrimSpace(user), pass)
		if err != nil {
			return err
		}

		pterm.Success.Printf("Signed in as %s\n", s.Username)
		if len(s.Roles) > 0 {
			pterm.Info.Printf("Roles: %s\n", strings.Join(s.Roles, ", "))
		}
		pterm.Info.Printf("Credentials saved to %s\n", a.store.Path())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := fromContext(cmd.Context())
		a.portal.SignOut(cmd.Context())
		fmt.Println("Logged out successfully")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := fromContext(cmd.Context())
		s, err := requireSession(a)
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("User: %s (id %d)\n", s.Username, s.ID)
		if s.Email != "" {
			pterm.Info.Printf("Email: %s\n", s.Email)
		}
		if s.EmployeeID != "" {
			pterm.Info.Printf("Employee: %s\n", s.EmployeeID)
		}
		pterm.Info.Printf("Roles: %s\n", strings.Join(s.Roles, ", "))

		if exp, ok := a.portal.TokenExpiry(); ok {
			if left := time.Until(exp); left > 0 {
				pterm.Info.Printf("Token expires at %s (in %s)\n", exp.Format(time.RFC1123), left.Round(time.Second))
			} else {
				pterm.Warning.Printf("Token expired at %s; the next call will refresh it\n", exp.Format(time.RFC1123))
			}
		} else {
			pterm.Info.Println("Token expiry unknown")
		}
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the stored token for a new one",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := fromContext(cmd.Context())
		if _, err := requireSession(a); err != nil {
			return err
		}
		if _, err := a.portal.Refresh(cmd.Context()); err != nil {
			return err
		}
		pterm.Success.Println("Token refreshed")
		if exp, ok := a.portal.TokenExpiry(); ok {
			pterm.Info.Printf("New token expires at %s\n", exp.Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "password (prefer HRCTL_PASSWORD or the prompt)")
}
