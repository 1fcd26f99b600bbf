package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/pkg/booking"
)

// BookAppointment submits the selected slot for doctorID. When the selection
// has no time it fails locally with a *ValidationError; nothing is sent.
func (c *Client) BookAppointment(ctx context.Context, doctorID uuid.UUID, sel *booking.Selection) error {
	localDateTime, err := sel.LocalDateTime()
	if err != nil {
		if errors.Is(err, booking.ErrNoTimeSelected) {
			return &ValidationError{Field: "time", Reason: "select a time slot before booking"}
		}
		return err
	}

	q := url.Values{}
	q.Set("doctorId", doctorID.String())
	q.Set("localDateTime", localDateTime)

	_, err = c.do(ctx, http.MethodPost, "/appointments/appointment/book", q, nil)
	return err
}

// PatientAppointments fetches the authenticated patient's appointments.
func (c *Client) PatientAppointments(ctx context.Context) ([]booking.Appointment, error) {
	var appts []booking.Appointment
	if err := c.get(ctx, "/appointments/appointment/patient", &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// DoctorAppointments fetches the authenticated doctor's queue.
func (c *Client) DoctorAppointments(ctx context.Context) ([]booking.Appointment, error) {
	var appts []booking.Appointment
	if err := c.get(ctx, "/appointments/appointment/doctor", &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// ConfirmAppointment moves a pending appointment to CONFIRMED.
func (c *Client) ConfirmAppointment(ctx context.Context, id uuid.UUID) error {
	return c.dispatch(ctx, "confirm", id)
}

// CompleteAppointment marks an appointment COMPLETED.
func (c *Client) CompleteAppointment(ctx context.Context, id uuid.UUID) error {
	return c.dispatch(ctx, "complete", id)
}

// CancelAppointment marks an appointment CANCELLED.
func (c *Client) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	return c.dispatch(ctx, "cancel", id)
}

// PayAppointment flips the payment status to ONLINE.
func (c *Client) PayAppointment(ctx context.Context, id uuid.UUID) error {
	return c.dispatch(ctx, "payment", id)
}

func (c *Client) dispatch(ctx context.Context, action string, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodPut, "/appointments/appointment/"+action+"/"+id.String(), nil, nil)
	return err
}
