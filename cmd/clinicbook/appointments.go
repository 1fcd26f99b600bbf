package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clinicbook/clinicbook/pkg/booking"
	"github.com/clinicbook/clinicbook/pkg/client"
)

func appointmentsCmd() *cobra.Command {
	var (
		showPast bool
		status   string
	)

	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List your appointments",
		Long: `Patients see their upcoming appointments (or past ones with --past).
Doctors see their full queue, optionally narrowed with --status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			appts, err := fetchAppointments(cmd.Context(), c)
			if err != nil {
				return err
			}

			if c.Session().Role == "DOCTOR" {
				printAppointments(booking.FilterByStatus(appts, status), true)
				return nil
			}

			upcoming, past := booking.Categorize(appts, time.Now())
			if showPast {
				fmt.Println("Past appointments:")
				printAppointments(past, false)
				return nil
			}
			fmt.Println("Upcoming appointments:")
			printAppointments(upcoming, false)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showPast, "past", false, "Show past appointments instead of upcoming")
	cmd.Flags().StringVar(&status, "status", "all", "Filter by status (doctors): PENDING, CONFIRMED, COMPLETED, CANCELLED or all")
	return cmd
}

// actionCmd builds one of the status-changing commands. Each one confirms with
// the user, dispatches, then refetches the list so the printed state is the
// server's, not a local guess.
func actionCmd(action, short, done string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <appointment-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%q is not an appointment id", args[0])
			}
			if !confirm(fmt.Sprintf("%s appointment %s?", strings.ToUpper(action[:1])+action[1:], id)) {
				fmt.Println("Aborted.")
				return nil
			}

			c := newClient()
			switch action {
			case "confirm":
				err = c.ConfirmAppointment(cmd.Context(), id)
			case "complete":
				err = c.CompleteAppointment(cmd.Context(), id)
			case "cancel":
				err = c.CancelAppointment(cmd.Context(), id)
			case "pay":
				err = c.PayAppointment(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Println(strings.ToUpper(done[:1]) + done[1:] + ".")

			appts, err := fetchAppointments(cmd.Context(), c)
			if err != nil {
				return fmt.Errorf("action succeeded but refetch failed: %w", err)
			}
			for _, a := range appts {
				if a.ID == id {
					printAppointments([]booking.Appointment{a}, c.Session().Role == "DOCTOR")
				}
			}
			return nil
		},
	}
}

// fetchAppointments picks the right listing endpoint for the session's role.
func fetchAppointments(ctx context.Context, c *client.Client) ([]booking.Appointment, error) {
	if c.Session().Role == "DOCTOR" {
		return c.DoctorAppointments(ctx)
	}
	return c.PatientAppointments(ctx)
}

// printAppointments renders a table; doctors see the patient column, patients
// the doctor column.
func printAppointments(appts []booking.Appointment, doctorView bool) {
	if len(appts) == 0 {
		fmt.Println("  (none)")
		return
	}
	other := "DOCTOR"
	if doctorView {
		other = "PATIENT"
	}
	fmt.Printf("  %-38s %-17s %-24s %-10s %s\n", "ID", "WHEN", other, "STATUS", "PAYMENT")
	for _, a := range appts {
		name := a.Doctor.FirstName + " " + a.Doctor.LastName
		if doctorView {
			name = a.Patient.FirstName + " " + a.Patient.LastName
		}
		fmt.Printf("  %-38s %-17s %-24s %-10s %s\n",
			a.ID,
			a.AppointmentDate.Format("Jan 2 15:04"),
			name,
			a.AppointmentStatus,
			a.PaymentStatus,
		)
	}
}

// confirm asks a y/N question on the terminal; --yes answers it.
func confirm(question string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
