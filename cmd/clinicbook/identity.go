package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clinicbook/clinicbook/pkg/client"
)

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				var err error
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			c := newClient()
			res, err := c.Login(cmd.Context(), client.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			if err := saveSession(sessionPath, c.Session()); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s).\n", email, res.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clearSession(sessionPath); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func registerCmd() *cobra.Command {
	var reg client.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.Email == "" || reg.FirstName == "" || reg.LastName == "" {
				return fmt.Errorf("--email, --first-name and --last-name are required")
			}
			if reg.Password == "" {
				var err error
				reg.Password, err = promptPassword("Choose a password: ")
				if err != nil {
					return err
				}
			}

			if err := newClient().RegisterPatient(cmd.Context(), reg); err != nil {
				return err
			}
			fmt.Printf("Account created for %s. Run `clinicbook login` to sign in.\n", reg.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "Last name")
	return cmd
}

func doctorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctors",
		Short: "List the doctors available for booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := newClient().ListDoctors(cmd.Context())
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Println("No doctors available.")
				return nil
			}
			fmt.Printf("%-38s %-24s %s\n", "ID", "NAME", "SPECIALIZATION")
			for _, d := range docs {
				fmt.Printf("%-38s %-24s %s\n", d.ID, d.FirstName+" "+d.LastName, d.Specialization)
			}
			return nil
		},
	}
}

// promptPassword reads a password without echo, falling back to a plain line
// read when stdin is not a terminal (pipes, tests).
func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
