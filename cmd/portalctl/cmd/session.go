package cmd

import (
	"fmt"
	"os"

	sessionhttp "clubportal/internal/session/adapter/http"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
	registerName  string
)

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", os.Getenv("PORTAL_PASSWORD"), "account password")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&loginPassword, "password", os.Getenv("PORTAL_PASSWORD"), "account password")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")

	RootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session in this profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var view sessionhttp.SessionView
		err := client.call("POST", "/session/login", sessionhttp.LoginRequest{
			Email:    loginEmail,
			Password: loginPassword,
		}, &view)
		if err != nil {
			return err
		}
		return printSession(cmd, view)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var view sessionhttp.SessionView
		err := client.call("POST", "/session/register", sessionhttp.RegisterRequest{
			Name:     registerName,
			Email:    loginEmail,
			Password: loginPassword,
		}, &view)
		if err != nil {
			return err
		}
		return printSession(cmd, view)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of this profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.call("POST", "/session/logout", nil, nil); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var view sessionhttp.SessionView
		err := client.call("GET", "/session", nil, &view)
		if IsUnauthorized(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		if err != nil {
			return err
		}
		return printSession(cmd, view)
	},
}

func printSession(cmd *cobra.Command, view sessionhttp.SessionView) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, view)
	}
	if !view.Authenticated || view.User == nil {
		fmt.Fprintln(out, "Not signed in")
		return nil
	}
	fmt.Fprintf(out, "Signed in as %s <%s>\n", view.User.Name, view.User.Email)
	if view.ExpiresAt != nil {
		fmt.Fprintf(out, "Session expires %s\n", view.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
