// Package identity manages clinic users: patients, doctors and admins.
// Doctors carry an extra profile (specialization, experience, consultation
// fee) stored alongside the base user record.
package identity

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDoctorNotFound     = errors.New("doctor not found")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is the base identity record shared by all roles.
type User struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"dob,omitempty"`
	Role        string     `json:"role"`

	// PasswordHash is the bcrypt hash; never serialized.
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Doctor is a user with a doctor profile. TotalPoints accumulates the
// consultation fee each time one of the doctor's appointments completes.
type Doctor struct {
	User
	Specialization  string `json:"specialization"`
	ExperienceYears int    `json:"experience"`
	Fee             int64  `json:"fee"`
	TotalPoints     int64  `json:"totalPoints"`
}

// Registration is the payload for patient self-registration and the user
// portion of doctor creation.
type Registration struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Validate checks the registration fields before any repository work.
func (r Registration) Validate() error {
	if r.FirstName == "" {
		return fmt.Errorf("first name is required")
	}
	if r.LastName == "" {
		return fmt.Errorf("last name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// CreateDoctorRequest extends Registration with the doctor profile.
type CreateDoctorRequest struct {
	Registration
	Specialization  string `json:"specialization"`
	ExperienceYears int    `json:"experience"`
	Fee             int64  `json:"fee"`
}

// UpdateUserRequest carries the profile fields a user may change.
type UpdateUserRequest struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	PhoneNumber string     `json:"phoneNumber"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"dob"`
}

// UpdateDoctorRequest adds the doctor profile fields to a user update.
type UpdateDoctorRequest struct {
	UpdateUserRequest
	Specialization  string `json:"specialization"`
	ExperienceYears int    `json:"experience"`
	Fee             int64  `json:"fee"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token  string    `json:"token"`
	Role   string    `json:"role"`
	UserID uuid.UUID `json:"userId"`
}
