package booking

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Categorize partitions appointments into upcoming and past relative to now.
// An appointment is past when its date is before now or its status is
// COMPLETED; everything else is upcoming. Note that a future-dated CANCELLED
// appointment is therefore still "upcoming".
//
// Upcoming is sorted ascending by date (soonest first), past descending
// (most recent first).
func Categorize(appts []Appointment, now time.Time) (upcoming, past []Appointment) {
	for _, a := range appts {
		if a.AppointmentDate.Before(now) || a.AppointmentStatus == StatusCompleted {
			past = append(past, a)
		} else {
			upcoming = append(upcoming, a)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].AppointmentDate.Before(upcoming[j].AppointmentDate)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].AppointmentDate.After(past[j].AppointmentDate)
	})
	return upcoming, past
}

// FilterByStatus returns the appointments whose status exactly matches the
// given status. An empty status or "all" passes the collection through
// unfiltered. This is the doctor-facing alternative to Categorize.
func FilterByStatus(appts []Appointment, status string) []Appointment {
	if status == "" || status == "all" {
		return appts
	}
	var out []Appointment
	for _, a := range appts {
		if a.AppointmentStatus == Status(status) {
			out = append(out, a)
		}
	}
	return out
}

// ApplyStatus returns a copy of appts where the appointment with the given id
// has its status replaced; all other fields and records are unchanged. It is
// the optimistic local patch applied after the server acknowledged a
// status-changing action.
func ApplyStatus(appts []Appointment, id uuid.UUID, status Status) []Appointment {
	out := make([]Appointment, len(appts))
	copy(out, appts)
	for i := range out {
		if out[i].ID == id {
			out[i].AppointmentStatus = status
		}
	}
	return out
}
