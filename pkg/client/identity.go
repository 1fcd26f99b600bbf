package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/pkg/booking"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the envelope obj returned by a successful login.
type LoginResult struct {
	Token  string    `json:"token"`
	Role   string    `json:"role"`
	UserID uuid.UUID `json:"userId"`
}

// Registration is the patient self-registration request body.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Login authenticates and installs the resulting session on the client.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var res LoginResult
	env, err := c.do(ctx, http.MethodPost, "/users/public/login", nil, creds)
	if err != nil {
		return res, err
	}
	if err := env.Decode(&res); err != nil {
		return res, fmt.Errorf("decode login response: %w", err)
	}
	c.session = Session{Token: res.Token, Role: res.Role}
	return res, nil
}

// RegisterPatient creates a patient account. The server answers 409 when the
// email is already taken; that surfaces here as an *APIError.
func (c *Client) RegisterPatient(ctx context.Context, reg Registration) error {
	_, err := c.do(ctx, http.MethodPost, "/users/public/patient/create", nil, reg)
	return err
}

// GetDoctor fetches a doctor's public profile.
func (c *Client) GetDoctor(ctx context.Context, id uuid.UUID) (booking.Doctor, error) {
	var d booking.Doctor
	err := c.get(ctx, "/users/doctor/get/"+id.String(), &d)
	return d, err
}

// ListDoctors fetches every doctor. The server wraps the list one level
// deeper than other endpoints: {"obj": {"doctors": [...]}}.
func (c *Client) ListDoctors(ctx context.Context) ([]booking.Doctor, error) {
	var wrapper struct {
		Doctors []booking.Doctor `json:"doctors"`
	}
	if err := c.get(ctx, "/users/doctor/all", &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Doctors, nil
}

// CurrentPatient fetches the authenticated patient's own record.
func (c *Client) CurrentPatient(ctx context.Context) (booking.Person, error) {
	var p booking.Person
	err := c.get(ctx, "/users/patient/get", &p)
	return p, err
}

// CurrentDoctor fetches the authenticated doctor's own record.
func (c *Client) CurrentDoctor(ctx context.Context) (booking.Doctor, error) {
	var d booking.Doctor
	err := c.get(ctx, "/users/doctor/get", &d)
	return d, err
}
