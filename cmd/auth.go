package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inheir-ai/inheir-console/internal/api"
	"github.com/inheir-ai/inheir-console/internal/session"
	"github.com/inheir-ai/inheir-console/internal/validate"
)

var (
	loginUsername string
	loginPassword string
)

// loginCmd signs in headlessly and persists the session locally, so the
// scripted commands (cases, report) work without opening the TUI.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Inheir.ai backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, flush, err := buildLogger(GetConfig().Log.Level, false)
		if err != nil {
			return err
		}
		defer flush()

		username := strings.TrimSpace(loginUsername)
		password := loginPassword
		if password == "" {
			password = os.Getenv("INHEIR_PASSWORD")
		}
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		if errs := validate.SignIn(validate.SignInForm{Username: username, Password: password}); !errs.OK() {
			for field, msg := range errs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
			}
			return fmt.Errorf("invalid credentials input")
		}

		client, st, sess, err := openWorkspace(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		expiry, err := client.SignIn(cmd.Context(), api.SignInRequest{Username: username, Password: password})
		if err != nil {
			return fmt.Errorf("sign-in failed: %w", err)
		}
		if err := sess.SignIn(cmd.Context(), session.Profile{Username: username, ExpiresAt: expiry}); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}

		if expiry.IsZero() {
			fmt.Printf("Signed in as %s\n", username)
		} else {
			fmt.Printf("Signed in as %s (session expires %s)\n", username, expiry.Format(time.RFC1123))
		}
		return nil
	},
}

// logoutCmd ends the backend session and clears the local one.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, flush, err := buildLogger(GetConfig().Log.Level, false)
		if err != nil {
			return err
		}
		defer flush()

		client, st, sess, err := openWorkspace(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := client.SignOut(cmd.Context()); err != nil {
			// The backend session may already be gone; the local one still
			// needs clearing.
			logger.Warnw("backend sign-out failed", "error", err)
		}
		if err := sess.SignOut(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear local session: %w", err)
		}
		fmt.Println("Signed out")
		return nil
	},
}

// whoamiCmd prints the locally persisted session.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, flush, err := buildLogger(GetConfig().Log.Level, false)
		if err != nil {
			return err
		}
		defer flush()

		_, st, sess, err := openWorkspace(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if !sess.SignedIn(cmd.Context()) {
			fmt.Println("Not signed in")
			return nil
		}
		p := sess.Profile(cmd.Context())
		fmt.Printf("Username: %s\n", p.Username)
		if p.FullName != "" {
			fmt.Printf("Name:     %s\n", p.FullName)
		}
		if p.Email != "" {
			fmt.Printf("Email:    %s\n", p.Email)
		}
		if !p.ExpiresAt.IsZero() {
			fmt.Printf("Expires:  %s\n", p.ExpiresAt.Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username to sign in with")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prefer INHEIR_PASSWORD or the prompt)")
	loginCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
