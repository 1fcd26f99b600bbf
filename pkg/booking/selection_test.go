package booking

import (
	"errors"
	"testing"
	"time"
)

func testWeek() []DaySlots {
	return GenerateWeek(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
}

func TestSelection_InitialState(t *testing.T) {
	s := NewSelection(testWeek())
	if s.DayIndex() != 0 {
		t.Errorf("expected day 0, got %d", s.DayIndex())
	}
	if s.Time() != "" {
		t.Errorf("expected no time selected, got %q", s.Time())
	}
	if s.GridVisible() {
		t.Error("time grid must be hidden until a day is chosen")
	}
}

func TestSelection_SelectDayResetsTime(t *testing.T) {
	s := NewSelection(testWeek())
	s.SelectDay(2)
	s.SelectTime("10:30")
	if s.Time() != "10:30" {
		t.Fatalf("expected 10:30 selected, got %q", s.Time())
	}

	s.SelectDay(3)
	if s.Time() != "" {
		t.Errorf("changing day must clear the time, got %q", s.Time())
	}
	if !s.GridVisible() {
		t.Error("grid should stay visible after day selection")
	}
}

func TestSelection_SelectDayOutOfRange(t *testing.T) {
	s := NewSelection(testWeek())
	s.SelectDay(1)
	s.SelectDay(7)
	s.SelectDay(-1)
	if s.DayIndex() != 1 {
		t.Errorf("out-of-range day selections must be ignored, got %d", s.DayIndex())
	}
}

func TestSelection_SelectTimeRejectsUnknownSlot(t *testing.T) {
	s := NewSelection(testWeek())
	s.SelectDay(0)
	s.SelectTime("09:00") // before opening, not in the grid
	if s.Time() != "" {
		t.Errorf("time outside the day's grid must be ignored, got %q", s.Time())
	}
	s.SelectTime("10:15") // not on a 30-minute boundary
	if s.Time() != "" {
		t.Errorf("time outside the day's grid must be ignored, got %q", s.Time())
	}
}

func TestSelection_BookingTime(t *testing.T) {
	s := NewSelection(testWeek())
	s.SelectDay(2)
	s.SelectTime("14:30")

	got, err := s.BookingTime()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	str, err := s.LocalDateTime()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if str != "2024-01-03T14:30:00" {
		t.Errorf("expected wire timestamp 2024-01-03T14:30:00, got %s", str)
	}
}

func TestSelection_BookingTimeWithoutSelection(t *testing.T) {
	s := NewSelection(testWeek())
	if _, err := s.BookingTime(); !errors.Is(err, ErrNoTimeSelected) {
		t.Errorf("expected ErrNoTimeSelected, got %v", err)
	}
}
