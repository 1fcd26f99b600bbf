// Command clinicbook is the terminal client for the clinicbook API. It keeps
// a session token on disk between invocations so that login happens once.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicbook/clinicbook/pkg/client"
)

var (
	serverURL   string
	sessionPath string
	assumeYes   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinicbook",
		Short:         "Book and manage clinic appointments from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080/api/v1", "Base URL of the clinicbook API")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", defaultSessionPath(), "Path to the saved session file")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(doctorsCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(appointmentsCmd())
	rootCmd.AddCommand(actionCmd("confirm", "Confirm a pending appointment", "appointment confirmed"))
	rootCmd.AddCommand(actionCmd("complete", "Mark an appointment completed", "appointment completed"))
	rootCmd.AddCommand(actionCmd("cancel", "Cancel an appointment", "appointment cancelled"))
	rootCmd.AddCommand(actionCmd("pay", "Pay for an appointment online", "payment updated"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newClient builds an API client carrying the saved session, if any.
func newClient() *client.Client {
	sess, err := loadSession(sessionPath)
	if err != nil {
		// A broken session file should not lock the user out of public
		// commands; start unauthenticated.
		sess = client.Session{}
	}
	return client.New(serverURL, client.WithSession(sess))
}
