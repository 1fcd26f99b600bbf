package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/identity"
	"github.com/clinicbook/clinicbook/internal/platform/auth"
	"github.com/clinicbook/clinicbook/pkg/booking"
)

// ---------------------------------------------------------------------------
// Directory stub
// ---------------------------------------------------------------------------

type stubDirectory struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*identity.User
	doctors map[uuid.UUID]*identity.Doctor
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		users:   make(map[uuid.UUID]*identity.User),
		doctors: make(map[uuid.UUID]*identity.Doctor),
	}
}

func (d *stubDirectory) addPatient(first, last string) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := uuid.New()
	d.users[id] = &identity.User{ID: id, FirstName: first, LastName: last, Role: auth.RolePatient}
	return id
}

func (d *stubDirectory) addDoctor(first, last, specialization string, fee int64) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := uuid.New()
	user := identity.User{ID: id, FirstName: first, LastName: last, Role: auth.RoleDoctor}
	d.users[id] = &user
	d.doctors[id] = &identity.Doctor{User: user, Specialization: specialization, Fee: fee}
	return id
}

func (d *stubDirectory) GetUser(_ context.Context, id uuid.UUID) (*identity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (d *stubDirectory) GetDoctor(_ context.Context, userID uuid.UUID) (*identity.Doctor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.doctors[userID]
	if !ok {
		return nil, identity.ErrDoctorNotFound
	}
	cp := *doc
	return &cp, nil
}

func (d *stubDirectory) CreditDoctorPoints(_ context.Context, userID uuid.UUID, amount int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.doctors[userID]
	if !ok {
		return identity.ErrDoctorNotFound
	}
	doc.TotalPoints += amount
	return nil
}

func (d *stubDirectory) points(userID uuid.UUID) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doctors[userID].TotalPoints
}

// ---------------------------------------------------------------------------
// Service tests
// ---------------------------------------------------------------------------

type fixture struct {
	svc       *Service
	repo      Repository
	dir       *stubDirectory
	doctorID  uuid.UUID
	patientID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewMemRepo()
	dir := newStubDirectory()
	return &fixture{
		svc:       NewService(repo, dir, nil),
		repo:      repo,
		dir:       dir,
		doctorID:  dir.addDoctor("Ben", "Okafor", "Cardiology", 150),
		patientID: dir.addPatient("Asha", "Rao"),
	}
}

func (f *fixture) book(t *testing.T) *View {
	t.Helper()
	view, err := f.svc.Book(context.Background(), f.patientID, f.doctorID, "2024-06-12T14:30:00")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	return view
}

func (f *fixture) asDoctor() Actor  { return Actor{ID: f.doctorID, Role: auth.RoleDoctor} }
func (f *fixture) asPatient() Actor { return Actor{ID: f.patientID, Role: auth.RolePatient} }

func TestBook(t *testing.T) {
	f := newFixture(t)
	view := f.book(t)

	if view.Status != booking.StatusPending {
		t.Errorf("status = %s, want PENDING", view.Status)
	}
	if view.Payment != booking.PaymentCash {
		t.Errorf("payment = %s, want CASH", view.Payment)
	}
	if view.Doctor.Specialization != "Cardiology" {
		t.Errorf("doctor specialization = %s", view.Doctor.Specialization)
	}
	want := time.Date(2024, 6, 12, 14, 30, 0, 0, time.UTC)
	if !view.AppointmentDate.Equal(want) {
		t.Errorf("date = %v, want %v", view.AppointmentDate, want)
	}
}

func TestBook_MalformedDateTime(t *testing.T) {
	f := newFixture(t)
	for _, raw := range []string{"", "2024-06-12", "12/06/2024 14:30", "2024-06-12T14:30"} {
		if _, err := f.svc.Book(context.Background(), f.patientID, f.doctorID, raw); !errors.Is(err, ErrBadDateTime) {
			t.Errorf("raw %q: expected ErrBadDateTime, got %v", raw, err)
		}
	}
}

func TestBook_UnknownDoctor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Book(context.Background(), f.patientID, uuid.New(), "2024-06-12T14:30:00")
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)

	view, err := f.svc.Confirm(context.Background(), f.asDoctor(), appt.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if view.Status != booking.StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", view.Status)
	}
}

func TestConfirm_OtherDoctorForbidden(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)
	other := f.dir.addDoctor("Mira", "Chen", "Dermatology", 90)

	_, err := f.svc.Confirm(context.Background(), Actor{ID: other, Role: auth.RoleDoctor}, appt.ID)
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestConfirm_AdminOverride(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)

	if _, err := f.svc.Confirm(context.Background(), Actor{ID: uuid.New(), Role: auth.RoleAdmin}, appt.ID); err != nil {
		t.Fatalf("admin confirm: %v", err)
	}
}

func TestComplete_CreditsDoctorFee(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)
	if _, err := f.svc.Confirm(context.Background(), f.asDoctor(), appt.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	view, err := f.svc.Complete(context.Background(), f.asDoctor(), appt.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if view.Status != booking.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", view.Status)
	}
	if got := f.dir.points(f.doctorID); got != 150 {
		t.Errorf("doctor points = %d, want 150", got)
	}
}

func TestComplete_TerminalStatesRejected(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)
	if _, err := f.svc.Cancel(context.Background(), f.asPatient(), appt.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	_, err := f.svc.Complete(context.Background(), f.asDoctor(), appt.ID)
	var badTransition *ErrBadTransition
	if !errors.As(err, &badTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}
	if got := f.dir.points(f.doctorID); got != 0 {
		t.Errorf("no points should accrue on a failed complete, got %d", got)
	}
}

func TestCancel_ByPatientAndDoctor(t *testing.T) {
	f := newFixture(t)

	first := f.book(t)
	if _, err := f.svc.Cancel(context.Background(), f.asPatient(), first.ID); err != nil {
		t.Errorf("patient cancel: %v", err)
	}

	second := f.book(t)
	if _, err := f.svc.Cancel(context.Background(), f.asDoctor(), second.ID); err != nil {
		t.Errorf("doctor cancel: %v", err)
	}

	third := f.book(t)
	stranger := f.dir.addPatient("Noor", "Khan")
	if _, err := f.svc.Cancel(context.Background(), Actor{ID: stranger, Role: auth.RolePatient}, third.ID); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("stranger cancel: expected ErrNotParticipant, got %v", err)
	}
}

func TestMarkPaidOnline(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)

	view, err := f.svc.MarkPaidOnline(context.Background(), f.asPatient(), appt.ID)
	if err != nil {
		t.Fatalf("MarkPaidOnline: %v", err)
	}
	if view.Payment != booking.PaymentOnline {
		t.Errorf("payment = %s, want ONLINE", view.Payment)
	}
	if view.Status != booking.StatusPending {
		t.Errorf("payment change must not touch status, got %s", view.Status)
	}
}

func TestMarkPaidOnline_CancelledRejected(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t)
	if _, err := f.svc.Cancel(context.Background(), f.asPatient(), appt.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	_, err := f.svc.MarkPaidOnline(context.Background(), f.asPatient(), appt.ID)
	var badTransition *ErrBadTransition
	if !errors.As(err, &badTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}
}

func TestPatientAndDoctorLists(t *testing.T) {
	f := newFixture(t)
	f.book(t)
	f.book(t)

	otherPatient := f.dir.addPatient("Noor", "Khan")
	if _, err := f.svc.Book(context.Background(), otherPatient, f.doctorID, "2024-06-13T10:00:00"); err != nil {
		t.Fatalf("Book: %v", err)
	}

	mine, err := f.svc.PatientAppointments(context.Background(), f.patientID)
	if err != nil {
		t.Fatalf("PatientAppointments: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("patient list = %d, want 2", len(mine))
	}

	queue, err := f.svc.DoctorAppointments(context.Background(), f.doctorID)
	if err != nil {
		t.Fatalf("DoctorAppointments: %v", err)
	}
	if len(queue) != 3 {
		t.Errorf("doctor queue = %d, want 3", len(queue))
	}
}
