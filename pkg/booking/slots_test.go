package booking

import (
	"testing"
	"time"
)

func TestGenerateWeek_AlwaysSevenDays(t *testing.T) {
	for _, hour := range []int{0, 9, 10, 13, 17, 18, 23} {
		now := time.Date(2024, 1, 1, hour, 15, 0, 0, time.UTC)
		week := GenerateWeek(now)
		if len(week) != WeekDays {
			t.Errorf("hour %d: expected %d days, got %d", hour, WeekDays, len(week))
		}
	}
}

func TestGenerateWeek_MorningStart(t *testing.T) {
	// Before opening: day 0 starts at 10:00 and runs to 17:30, 16 slots.
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	week := GenerateWeek(now)

	day0 := week[0]
	if len(day0.Slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(day0.Slots))
	}
	if day0.Slots[0].Time != "10:00" {
		t.Errorf("expected first slot 10:00, got %s", day0.Slots[0].Time)
	}
	if last := day0.Slots[len(day0.Slots)-1].Time; last != "17:30" {
		t.Errorf("expected last slot 17:30, got %s", last)
	}
}

func TestGenerateWeek_AfterClosing(t *testing.T) {
	// At 19:00 day 0 offers nothing but remains in the grid; day 1 is full.
	now := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
	week := GenerateWeek(now)

	if len(week[0].Slots) != 0 {
		t.Errorf("expected empty day 0, got %d slots", len(week[0].Slots))
	}
	if week[0].Date.Day() != 1 {
		t.Errorf("empty day 0 must still carry its date, got %v", week[0].Date)
	}
	if len(week[1].Slots) != 16 {
		t.Errorf("expected 16 slots on day 1, got %d", len(week[1].Slots))
	}
	if week[1].Slots[0].Time != "10:00" {
		t.Errorf("expected day 1 to start at 10:00, got %s", week[1].Slots[0].Time)
	}
}

func TestGenerateWeek_MidDayStart(t *testing.T) {
	// At 13:45 day 0 starts at 13:00 per the original rule (minutes are not
	// rounded up; the hour floor is used).
	now := time.Date(2024, 1, 1, 13, 45, 0, 0, time.UTC)
	week := GenerateWeek(now)

	if week[0].Slots[0].Time != "13:00" {
		t.Errorf("expected first slot 13:00, got %s", week[0].Slots[0].Time)
	}
}

func TestGenerateWeek_SlotSpacingAndBounds(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	for dayIdx, day := range GenerateWeek(now) {
		for i, slot := range day.Slots {
			if slot.Datetime.Hour() >= ClosingHour {
				t.Errorf("day %d slot %s reaches closing hour", dayIdx, slot.Time)
			}
			if i > 0 {
				prev := day.Slots[i-1].Datetime
				if got := slot.Datetime.Sub(prev); got != SlotInterval {
					t.Errorf("day %d: slots %d/%d are %v apart", dayIdx, i-1, i, got)
				}
			}
		}
		if dayIdx > 0 && (len(day.Slots) == 0 || day.Slots[0].Datetime.Hour() != OpeningHour) {
			t.Errorf("day %d must start at %02d:00", dayIdx, OpeningHour)
		}
	}
}

func TestGenerateWeek_DatesAreConsecutive(t *testing.T) {
	now := time.Date(2024, 1, 29, 11, 0, 0, 0, time.UTC) // crosses into February
	week := GenerateWeek(now)
	for i := 1; i < len(week); i++ {
		want := week[i-1].Date.AddDate(0, 0, 1)
		if !week[i].Date.Equal(want) {
			t.Errorf("day %d: expected date %v, got %v", i, want, week[i].Date)
		}
	}
}
