// Package appointment implements the booking lifecycle: patients book a slot
// with a doctor, doctors confirm and complete visits, and either side can
// cancel. Completing a visit credits the doctor's consultation fee to their
// running points total.
package appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/pkg/booking"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrNotParticipant      = errors.New("appointment belongs to another user")
	ErrBadDateTime         = errors.New("localDateTime must be formatted yyyy-MM-ddTHH:mm:ss")
)

// ErrBadTransition reports an illegal status change.
type ErrBadTransition struct {
	From, To booking.Status
}

func (e *ErrBadTransition) Error() string {
	return fmt.Sprintf("cannot move appointment from %s to %s", e.From, e.To)
}

// Appointment is the server-side booking record. Doctor and patient snapshots
// are denormalized into list responses by the service.
type Appointment struct {
	ID              uuid.UUID             `json:"id"`
	DoctorID        uuid.UUID             `json:"doctorId"`
	PatientID       uuid.UUID             `json:"patientId"`
	AppointmentDate time.Time             `json:"appointmentDate"`
	Status          booking.Status        `json:"appointmentStatus"`
	Payment         booking.PaymentStatus `json:"paymentStatus"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// View is the appointment as returned to clients, with doctor and patient
// details attached.
type View struct {
	ID              uuid.UUID             `json:"id"`
	Doctor          Participant           `json:"doctor"`
	Patient         Participant           `json:"patient"`
	AppointmentDate time.Time             `json:"appointmentDate"`
	Status          booking.Status        `json:"appointmentStatus"`
	Payment         booking.PaymentStatus `json:"paymentStatus"`
}

// Participant is the slice of a user shown on an appointment.
type Participant struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Specialization string    `json:"specialization,omitempty"`
}

// ParseBookingTime parses the wire format the booking endpoint accepts.
func ParseBookingTime(raw string) (time.Time, error) {
	t, err := time.Parse(booking.LocalDateTime, raw)
	if err != nil {
		return time.Time{}, ErrBadDateTime
	}
	return t, nil
}

// allowedTransitions maps each status to the set it may move to. Completed
// and cancelled are terminal. A visit may complete without an explicit
// confirm step.
var allowedTransitions = map[booking.Status][]booking.Status{
	booking.StatusPending:   {booking.StatusConfirmed, booking.StatusCompleted, booking.StatusCancelled},
	booking.StatusConfirmed: {booking.StatusCompleted, booking.StatusCancelled},
}

func canTransition(from, to booking.Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
