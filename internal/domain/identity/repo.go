package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the persistence interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error)
}

// DoctorRepository defines the persistence interface for doctor profiles.
// Doctor rows attach a profile to an existing user with the DOCTOR role.
type DoctorRepository interface {
	Create(ctx context.Context, doc *Doctor) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, doc *Doctor) error
	Delete(ctx context.Context, userID uuid.UUID) error
	ListAll(ctx context.Context) ([]*Doctor, error)
	// CreditPoints adds amount to the doctor's running total.
	CreditPoints(ctx context.Context, userID uuid.UUID, amount int64) error
}
