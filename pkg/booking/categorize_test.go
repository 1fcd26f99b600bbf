package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func appt(date time.Time, status Status) Appointment {
	return Appointment{
		ID:                uuid.New(),
		Doctor:            Doctor{Person: Person{ID: uuid.New(), FirstName: "Asha", LastName: "Rao"}, Specialization: "Dermatology"},
		Patient:           Person{ID: uuid.New(), FirstName: "Sam", LastName: "Mehta"},
		AppointmentDate:   date,
		AppointmentStatus: status,
		PaymentStatus:     PaymentCash,
	}
}

func TestCategorize_CompletedIsAlwaysPast(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tomorrow := appt(now.AddDate(0, 0, 1), StatusCompleted)

	upcoming, past := Categorize([]Appointment{tomorrow}, now)
	if len(upcoming) != 0 || len(past) != 1 {
		t.Errorf("a COMPLETED appointment dated tomorrow must be past, got upcoming=%d past=%d",
			len(upcoming), len(past))
	}
}

func TestCategorize_FutureCancelledStaysUpcoming(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cancelled := appt(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), StatusCancelled)

	upcoming, past := Categorize([]Appointment{cancelled}, now)
	if len(upcoming) != 1 || len(past) != 0 {
		t.Errorf("future CANCELLED must stay upcoming, got upcoming=%d past=%d",
			len(upcoming), len(past))
	}
}

func TestCategorize_SortOrders(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	appts := []Appointment{
		appt(now.AddDate(0, 0, 5), StatusPending),
		appt(now.AddDate(0, 0, 1), StatusConfirmed),
		appt(now.AddDate(0, 0, 3), StatusPending),
		appt(now.AddDate(0, 0, -1), StatusCompleted),
		appt(now.AddDate(0, 0, -5), StatusCancelled),
		appt(now.AddDate(0, 0, -2), StatusConfirmed),
	}

	upcoming, past := Categorize(appts, now)

	for i := 1; i < len(upcoming); i++ {
		if upcoming[i].AppointmentDate.Before(upcoming[i-1].AppointmentDate) {
			t.Error("upcoming must be non-decreasing by date")
		}
	}
	for i := 1; i < len(past); i++ {
		if past[i].AppointmentDate.After(past[i-1].AppointmentDate) {
			t.Error("past must be non-increasing by date")
		}
	}
	if len(upcoming) != 3 || len(past) != 3 {
		t.Errorf("expected 3/3 partition, got %d/%d", len(upcoming), len(past))
	}
}

func TestFilterByStatus(t *testing.T) {
	now := time.Now()
	appts := []Appointment{
		appt(now, StatusPending),
		appt(now, StatusConfirmed),
		appt(now, StatusPending),
	}

	if got := FilterByStatus(appts, "PENDING"); len(got) != 2 {
		t.Errorf("expected 2 PENDING, got %d", len(got))
	}
	if got := FilterByStatus(appts, "CANCELLED"); len(got) != 0 {
		t.Errorf("expected none, got %d", len(got))
	}
	if got := FilterByStatus(appts, "all"); len(got) != 3 {
		t.Errorf("\"all\" must pass through, got %d", len(got))
	}
	if got := FilterByStatus(appts, ""); len(got) != 3 {
		t.Errorf("empty filter must pass through, got %d", len(got))
	}
}

func TestApplyStatus_PatchesOnlyTheStatusField(t *testing.T) {
	now := time.Now()
	a := appt(now.AddDate(0, 0, 2), StatusPending)
	b := appt(now.AddDate(0, 0, 3), StatusConfirmed)

	out := ApplyStatus([]Appointment{a, b}, a.ID, StatusCancelled)

	if out[0].AppointmentStatus != StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", out[0].AppointmentStatus)
	}
	patched := out[0]
	patched.AppointmentStatus = a.AppointmentStatus
	if patched != a {
		t.Error("all fields except status must be unchanged")
	}
	if out[1] != b {
		t.Error("other appointments must be untouched")
	}
}
