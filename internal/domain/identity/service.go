package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicbook/clinicbook/internal/platform/auth"
)

// TxRunner executes fn inside a database transaction. Repositories called
// with the context fn receives participate in that transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// NoTx runs fn directly. Used by in-memory setups and tests.
func NoTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	users   UserRepository
	doctors DoctorRepository
	issuer  *auth.Issuer
	runTx   TxRunner
}

func NewService(users UserRepository, doctors DoctorRepository, issuer *auth.Issuer, runTx TxRunner) *Service {
	if runTx == nil {
		runTx = NoTx
	}
	return &Service{users: users, doctors: doctors, issuer: issuer, runTx: runTx}
}

// Login verifies the credentials and returns a signed token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &LoginResult{Token: token, Role: user.Role, UserID: user.ID}, nil
}

// RegisterPatient creates a patient account from a self-registration.
func (s *Service) RegisterPatient(ctx context.Context, reg Registration) (*User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	user, err := s.newUser(reg, auth.RolePatient)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateDoctor creates a doctor account with its profile. The user row and
// the doctor profile commit together.
func (s *Service) CreateDoctor(ctx context.Context, req CreateDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Specialization == "" {
		return nil, fmt.Errorf("specialization is required")
	}
	if req.Fee < 0 {
		return nil, fmt.Errorf("fee cannot be negative")
	}

	user, err := s.newUser(req.Registration, auth.RoleDoctor)
	if err != nil {
		return nil, err
	}
	doc := &Doctor{
		User:            *user,
		Specialization:  req.Specialization,
		ExperienceYears: req.ExperienceYears,
		Fee:             req.Fee,
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, &doc.User); err != nil {
			return err
		}
		return s.doctors.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDoctor returns the doctor profile for a user id.
func (s *Service) GetDoctor(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByUserID(ctx, userID)
}

// GetUser returns the base user record.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// ListDoctors returns every doctor with their profile.
func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.ListAll(ctx)
}

// ListPatients returns a page of patient users.
func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, auth.RolePatient, limit, offset)
}

// ListUsers returns a page of all users regardless of role.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// UpdatePatient applies profile changes to the calling patient.
func (s *Service) UpdatePatient(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyUserUpdate(user, req)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateDoctor applies profile changes to the calling doctor, including the
// doctor-specific fields.
func (s *Service) UpdateDoctor(ctx context.Context, userID uuid.UUID, req UpdateDoctorRequest) (*Doctor, error) {
	doc, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyUserUpdate(&doc.User, req.UpdateUserRequest)
	if req.Specialization != "" {
		doc.Specialization = req.Specialization
	}
	if req.ExperienceYears > 0 {
		doc.ExperienceYears = req.ExperienceYears
	}
	if req.Fee > 0 {
		doc.Fee = req.Fee
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.users.Update(ctx, &doc.User); err != nil {
			return err
		}
		return s.doctors.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteUser removes a user and, for doctors, the attached profile.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.doctors.Delete(ctx, id); err != nil && !errors.Is(err, ErrDoctorNotFound) {
			return err
		}
		return s.users.Delete(ctx, id)
	})
}

// CreditDoctorPoints adds amount to a doctor's total points. Called by the
// appointment service when a consultation completes.
func (s *Service) CreditDoctorPoints(ctx context.Context, userID uuid.UUID, amount int64) error {
	return s.doctors.CreditPoints(ctx, userID, amount)
}

func (s *Service) newUser(reg Registration, role string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return &User{
		ID:           uuid.New(),
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		PhoneNumber:  reg.PhoneNumber,
		Role:         role,
		PasswordHash: string(hash),
	}, nil
}

func applyUserUpdate(user *User, req UpdateUserRequest) {
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
}
