package booking

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoTimeSelected is returned when a booking time is requested before the
// user has picked a slot.
var ErrNoTimeSelected = errors.New("no time slot selected")

// Selection tracks the user's day/time choice against a generated week.
// Initial state is day 0 with no time chosen and the time grid hidden; the
// grid is revealed the first time a day is explicitly selected.
type Selection struct {
	week        []DaySlots
	dayIndex    int
	time        string
	gridVisible bool
}

// NewSelection creates a Selection over the given week in its initial state.
func NewSelection(week []DaySlots) *Selection {
	return &Selection{week: week}
}

// SelectDay records the chosen day, reveals the time grid and clears any
// previously chosen time. Out-of-range indexes are ignored: callers are
// expected to only offer the 7 generated days.
func (s *Selection) SelectDay(index int) {
	if index < 0 || index >= len(s.week) {
		return
	}
	s.dayIndex = index
	s.gridVisible = true
	s.time = ""
}

// SelectTime records the chosen time if it belongs to the selected day's
// slots. Times outside the day's grid are ignored (closed-UI contract: valid
// choices are the only ones offered).
func (s *Selection) SelectTime(t string) {
	for _, slot := range s.week[s.dayIndex].Slots {
		if slot.Time == t {
			s.time = t
			return
		}
	}
}

// DayIndex returns the currently selected day index.
func (s *Selection) DayIndex() int { return s.dayIndex }

// Time returns the currently selected HH:MM time, or "" when none is chosen.
func (s *Selection) Time() string { return s.time }

// GridVisible reports whether a day has been explicitly chosen yet.
func (s *Selection) GridVisible() bool { return s.gridVisible }

// Day returns the DaySlots of the currently selected day.
func (s *Selection) Day() DaySlots { return s.week[s.dayIndex] }

// BookingTime combines the selected day's date with the selected time into
// the instant to submit. It fails with ErrNoTimeSelected when no time has
// been chosen; it never touches the network.
func (s *Selection) BookingTime() (time.Time, error) {
	if s.time == "" {
		return time.Time{}, ErrNoTimeSelected
	}
	t, err := time.Parse("15:04", s.time)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse selected time %q: %w", s.time, err)
	}
	d := s.week[s.dayIndex].Date
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location()), nil
}

// LocalDateTime renders BookingTime in the wire format the booking endpoint
// expects (YYYY-MM-DDTHH:mm:00, no zone).
func (s *Selection) LocalDateTime() (string, error) {
	t, err := s.BookingTime()
	if err != nil {
		return "", err
	}
	return t.Format(LocalDateTime), nil
}
