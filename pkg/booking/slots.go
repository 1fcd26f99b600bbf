package booking

import "time"

const (
	// OpeningHour is the earliest bookable hour of any day.
	OpeningHour = 10
	// ClosingHour is the exclusive upper bound: no slot starts at or after it.
	ClosingHour = 18
	// SlotInterval is the length of one bookable window.
	SlotInterval = 30 * time.Minute
	// WeekDays is the number of days covered by one generation cycle.
	WeekDays = 7
)

// TimeSlot is a single bookable 30-minute window.
type TimeSlot struct {
	Datetime time.Time `json:"datetime"`
	Time     string    `json:"time"` // HH:MM
}

// DaySlots holds the slots of one calendar day. Date is always set, even when
// the day offers no slots, so a 7-day grid can still be rendered.
type DaySlots struct {
	Date  time.Time  `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

// GenerateWeek computes the bookable slots for the next 7 days starting at
// now's date. Day 0 starts at max(now's hour, OpeningHour); every other day
// starts at OpeningHour. Slots advance in SlotInterval steps and stop strictly
// before ClosingHour. If now is at or past ClosingHour, day 0 is empty but
// still present.
//
// The result is deterministic for a given now and carries now's location.
func GenerateWeek(now time.Time) []DaySlots {
	week := make([]DaySlots, 0, WeekDays)
	for i := 0; i < WeekDays; i++ {
		day := now.AddDate(0, 0, i)

		startHour := OpeningHour
		if i == 0 && now.Hour() > startHour {
			startHour = now.Hour()
		}

		var slots []TimeSlot
		cur := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location())
		end := time.Date(day.Year(), day.Month(), day.Day(), ClosingHour, 0, 0, 0, day.Location())
		for cur.Before(end) {
			slots = append(slots, TimeSlot{Datetime: cur, Time: cur.Format("15:04")})
			cur = cur.Add(SlotInterval)
		}

		week = append(week, DaySlots{
			Date:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
			Slots: slots,
		})
	}
	return week
}
