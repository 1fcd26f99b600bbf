// Package booking implements the client-side core of the appointment
// workflow: week time-slot generation, selection tracking and appointment
// categorization. Everything here is pure computation; network calls live in
// pkg/client.
package booking

import (
	"time"

	"github.com/google/uuid"
)

// LocalDateTime is the wire layout of booking timestamps: a local date-time
// with no zone designator.
const LocalDateTime = "2006-01-02T15:04:05"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentStatus tracks how (or whether) an appointment has been paid.
type PaymentStatus string

const (
	PaymentCash   PaymentStatus = "CASH"
	PaymentOnline PaymentStatus = "ONLINE"
	PaymentPaid   PaymentStatus = "PAID"
)

// Person is the minimal identity carried on an appointment record.
type Person struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// Doctor extends Person with the doctor's specialization as shown in
// appointment listings.
type Doctor struct {
	Person
	Specialization string `json:"specialization"`
}

// Appointment is the read-mostly client copy of a server-side appointment.
// The server remains authoritative; local copies are only patched as an
// optimistic reflection of a just-confirmed status change.
type Appointment struct {
	ID                uuid.UUID     `json:"id"`
	Doctor            Doctor        `json:"doctor"`
	Patient           Person        `json:"patient"`
	AppointmentDate   time.Time     `json:"appointmentDate"`
	AppointmentStatus Status        `json:"appointmentStatus"`
	PaymentStatus     PaymentStatus `json:"paymentStatus,omitempty"`
}
