package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clinicbook/clinicbook/pkg/booking"
)

func bookCmd() *cobra.Command {
	var (
		doctorFlag string
		dayFlag    int
		timeFlag   string
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a 30-minute appointment slot",
		Long: `Book walks the slot grid for the next 7 days. Without --day it prints
the week overview; with --day but no --time it prints that day's free slots;
with both it submits the booking.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doctorID, err := uuid.Parse(doctorFlag)
			if err != nil {
				return fmt.Errorf("--doctor must be a doctor id (see `clinicbook doctors`)")
			}

			week := booking.GenerateWeek(time.Now())
			sel := booking.NewSelection(week)

			if !cmd.Flags().Changed("day") {
				printWeek(week)
				fmt.Println("\nPick a day with --day and a slot with --time.")
				return nil
			}
			if dayFlag < 0 || dayFlag >= len(week) {
				return fmt.Errorf("--day must be between 0 and %d", len(week)-1)
			}
			sel.SelectDay(dayFlag)

			if timeFlag == "" {
				printDay(sel.Day())
				fmt.Println("\nPick a slot with --time HH:MM.")
				return nil
			}
			sel.SelectTime(timeFlag)
			if sel.Time() == "" {
				return fmt.Errorf("%s is not a bookable slot on %s", timeFlag, sel.Day().Date.Format("Mon Jan 2"))
			}

			when, err := sel.BookingTime()
			if err != nil {
				return err
			}
			prompt := fmt.Sprintf("Book %s with doctor %s?", when.Format("Mon Jan 2 15:04"), doctorID)
			if !confirm(prompt) {
				fmt.Println("Aborted.")
				return nil
			}

			if err := newClient().BookAppointment(cmd.Context(), doctorID, sel); err != nil {
				return err
			}
			fmt.Printf("Booked %s. The doctor still has to confirm it.\n", when.Format("Mon Jan 2 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&doctorFlag, "doctor", "", "Doctor id to book with")
	cmd.Flags().IntVar(&dayFlag, "day", 0, "Day offset from today (0-6)")
	cmd.Flags().StringVar(&timeFlag, "time", "", "Slot start time, HH:MM")
	cmd.MarkFlagRequired("doctor")
	return cmd
}

func printWeek(week []booking.DaySlots) {
	for i, day := range week {
		label := day.Date.Format("Mon Jan 2")
		if len(day.Slots) == 0 {
			fmt.Printf("  --day %d  %-12s no slots left today\n", i, label)
			continue
		}
		first := day.Slots[0].Time
		last := day.Slots[len(day.Slots)-1].Time
		fmt.Printf("  --day %d  %-12s %2d slots, %s - %s\n", i, label, len(day.Slots), first, last)
	}
}

func printDay(day booking.DaySlots) {
	fmt.Printf("Slots on %s:\n", day.Date.Format("Mon Jan 2"))
	if len(day.Slots) == 0 {
		fmt.Println("  none left")
		return
	}
	for i, slot := range day.Slots {
		fmt.Printf("  %s", slot.Time)
		if (i+1)%8 == 0 || i == len(day.Slots)-1 {
			fmt.Println()
		}
	}
}
