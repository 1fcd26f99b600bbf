package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory repositories used by tests and by dev mode when no database is
// configured.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

// NewMemUserRepo returns a thread-safe in-memory UserRepository.
func NewMemUserRepo() UserRepository {
	return &memUserRepo{users: make(map[uuid.UUID]*User)}
}

func (r *memUserRepo) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*User
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	return pageUsers(all, limit, offset), len(all), nil
}

func (r *memUserRepo) ListByRole(_ context.Context, role string, limit, offset int) ([]*User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*User
	for _, u := range r.users {
		if u.Role == role {
			cp := *u
			matched = append(matched, &cp)
		}
	}
	return pageUsers(matched, limit, offset), len(matched), nil
}

func pageUsers(users []*User, limit, offset int) []*User {
	if offset > len(users) {
		offset = len(users)
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end]
}

type memDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*Doctor
}

// NewMemDoctorRepo returns a thread-safe in-memory DoctorRepository.
func NewMemDoctorRepo() DoctorRepository {
	return &memDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (r *memDoctorRepo) Create(_ context.Context, doc *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.doctors[doc.ID] = &cp
	return nil
}

func (r *memDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[userID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memDoctorRepo) Update(_ context.Context, doc *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[doc.ID]; !ok {
		return ErrDoctorNotFound
	}
	cp := *doc
	r.doctors[doc.ID] = &cp
	return nil
}

func (r *memDoctorRepo) Delete(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.doctors, userID)
	return nil
}

func (r *memDoctorRepo) ListAll(_ context.Context) ([]*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*Doctor
	for _, d := range r.doctors {
		cp := *d
		all = append(all, &cp)
	}
	return all, nil
}

func (r *memDoctorRepo) CreditPoints(_ context.Context, userID uuid.UUID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[userID]
	if !ok {
		return ErrDoctorNotFound
	}
	d.TotalPoints += amount
	return nil
}
