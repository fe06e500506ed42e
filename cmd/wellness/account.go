// ABOUTME: CLI commands for accounts and sessions.
// ABOUTME: signup, login, logout, whoami and verify drive the session gate.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harperreed/wellness/internal/auth"
)

var accountPassword string

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account",
	Long: `Create a local account and sign in.

Passwords need at least 6 characters. Without --password you are prompted
for one. When require_verification is set in the config, the account has to
be confirmed with 'wellness verify' before you can sign in.

Example:
  wellness signup you@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		res, err := gate.SignUp(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.NeedsVerification {
			fmt.Fprintln(out, color.YellowString("✓ Account created, verification pending"))
			fmt.Fprintf(out, "  Run 'wellness verify %s' and then log in.\n", args[0])
			return nil
		}
		fmt.Fprintln(out, color.GreenString("✓ Signed up as %s", res.Session.Email))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:     "login <email>",
	Aliases: []string{"signin"},
	Short:   "Sign in",
	Long: `Sign in with email and password. The session is remembered for later
commands until you log out or it expires.

Example:
  wellness login you@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		session, err := gate.SignIn(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Signed in as %s", session.Email))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Aliases: []string{"signout"},
	Short:   "Sign out",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if gate.State() != auth.StateAuthenticated {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		gate.SignOut(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("✗ Signed out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		session := gate.CurrentSession()
		if session == nil {
			fmt.Fprintln(out, "Not signed in.")
			fmt.Fprintln(out, "\nRun 'wellness login <email>' or 'wellness signup <email>'.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Fprintln(out, session.Email)
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint("user:   "), session.UserID)
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint("since:  "), humanize.Time(session.CreatedAt))
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint("expires:"), humanize.Time(session.ExpiresAt))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <email>",
	Short: "Confirm an account's email address",
	Long: `Mark a local account as verified so it can sign in.

Only needed when require_verification is enabled in the config.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := provider.Verify(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("verify account: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Verified %s", strings.ToLower(strings.TrimSpace(args[0]))))
		return nil
	},
}

// readPassword returns --password, or prompts without echo on a terminal.
func readPassword(cmd *cobra.Command) (string, error) {
	if accountPassword != "" {
		return accountPassword, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no password given: use --password or run in a terminal")
	}
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func init() {
	signupCmd.Flags().StringVarP(&accountPassword, "password", "p", "", "password (prompted when omitted)")
	loginCmd.Flags().StringVarP(&accountPassword, "password", "p", "", "password (prompted when omitted)")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(verifyCmd)
}
