package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/identity"
	"github.com/clinicbook/clinicbook/internal/platform/auth"
	"github.com/clinicbook/clinicbook/pkg/booking"
)

// Directory is the slice of the identity service the appointment workflow
// needs: participant lookups and fee crediting.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
	GetDoctor(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error)
	CreditDoctorPoints(ctx context.Context, userID uuid.UUID, amount int64) error
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) isAdmin() bool { return a.Role == auth.RoleAdmin }

type Service struct {
	repo  Repository
	users Directory
	runTx identity.TxRunner
}

func NewService(repo Repository, users Directory, runTx identity.TxRunner) *Service {
	if runTx == nil {
		runTx = identity.NoTx
	}
	return &Service{repo: repo, users: users, runTx: runTx}
}

// Book creates a PENDING appointment paying CASH for the given doctor and
// wire-format datetime.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, localDateTime string) (*View, error) {
	when, err := ParseBookingTime(localDateTime)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetDoctor(ctx, doctorID); err != nil {
		return nil, ErrDoctorNotFound
	}

	appt := &Appointment{
		ID:              uuid.New(),
		DoctorID:        doctorID,
		PatientID:       patientID,
		AppointmentDate: when,
		Status:          booking.StatusPending,
		Payment:         booking.PaymentCash,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}
	return s.view(ctx, appt)
}

// Confirm moves a pending appointment to CONFIRMED. Only the appointment's
// doctor (or an admin) may confirm.
func (s *Service) Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*View, error) {
	return s.transition(ctx, actor, id, booking.StatusConfirmed)
}

// Complete marks the visit COMPLETED and credits the doctor's consultation
// fee to their points total. Both writes commit together.
func (s *Service) Complete(ctx context.Context, actor Actor, id uuid.UUID) (*View, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != actor.ID && !actor.isAdmin() {
		return nil, ErrNotParticipant
	}
	if !canTransition(appt.Status, booking.StatusCompleted) {
		return nil, &ErrBadTransition{From: appt.Status, To: booking.StatusCompleted}
	}

	doc, err := s.users.GetDoctor(ctx, appt.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("loading doctor: %w", err)
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		appt.Status = booking.StatusCompleted
		if err := s.repo.Update(ctx, appt); err != nil {
			return err
		}
		return s.users.CreditDoctorPoints(ctx, appt.DoctorID, doc.Fee)
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, appt)
}

// Cancel moves an appointment to CANCELLED. The patient, the doctor or an
// admin may cancel.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*View, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != actor.ID && appt.DoctorID != actor.ID && !actor.isAdmin() {
		return nil, ErrNotParticipant
	}
	if !canTransition(appt.Status, booking.StatusCancelled) {
		return nil, &ErrBadTransition{From: appt.Status, To: booking.StatusCancelled}
	}

	appt.Status = booking.StatusCancelled
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return s.view(ctx, appt)
}

// MarkPaidOnline switches the payment method to ONLINE. Cancelled
// appointments cannot take payment.
func (s *Service) MarkPaidOnline(ctx context.Context, actor Actor, id uuid.UUID) (*View, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != actor.ID && !actor.isAdmin() {
		return nil, ErrNotParticipant
	}
	if appt.Status == booking.StatusCancelled {
		return nil, &ErrBadTransition{From: appt.Status, To: appt.Status}
	}

	appt.Payment = booking.PaymentOnline
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return s.view(ctx, appt)
}

// PatientAppointments returns every appointment for a patient.
func (s *Service) PatientAppointments(ctx context.Context, patientID uuid.UUID) ([]*View, error) {
	appts, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, appts)
}

// DoctorAppointments returns every appointment in a doctor's queue.
func (s *Service) DoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]*View, error) {
	appts, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, appts)
}

// AllAppointments returns a page of all appointments.
func (s *Service) AllAppointments(ctx context.Context, limit, offset int) ([]*View, int, error) {
	appts, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views(ctx, appts)
	return views, total, err
}

func (s *Service) transition(ctx context.Context, actor Actor, id uuid.UUID, to booking.Status) (*View, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != actor.ID && !actor.isAdmin() {
		return nil, ErrNotParticipant
	}
	if !canTransition(appt.Status, to) {
		return nil, &ErrBadTransition{From: appt.Status, To: to}
	}

	appt.Status = to
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return s.view(ctx, appt)
}

func (s *Service) view(ctx context.Context, appt *Appointment) (*View, error) {
	doctor, err := s.participant(ctx, appt.DoctorID, true)
	if err != nil {
		return nil, err
	}
	patient, err := s.participant(ctx, appt.PatientID, false)
	if err != nil {
		return nil, err
	}
	return &View{
		ID:              appt.ID,
		Doctor:          doctor,
		Patient:         patient,
		AppointmentDate: appt.AppointmentDate,
		Status:          appt.Status,
		Payment:         appt.Payment,
	}, nil
}

func (s *Service) views(ctx context.Context, appts []*Appointment) ([]*View, error) {
	views := make([]*View, 0, len(appts))
	for _, a := range appts {
		v, err := s.view(ctx, a)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) participant(ctx context.Context, id uuid.UUID, asDoctor bool) (Participant, error) {
	if asDoctor {
		doc, err := s.users.GetDoctor(ctx, id)
		if err == nil {
			return Participant{
				ID:             doc.ID,
				FirstName:      doc.FirstName,
				LastName:       doc.LastName,
				Specialization: doc.Specialization,
			}, nil
		}
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return Participant{}, fmt.Errorf("loading participant %s: %w", id, err)
	}
	return Participant{ID: user.ID, FirstName: user.FirstName, LastName: user.LastName}, nil
}
