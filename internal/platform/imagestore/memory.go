package imagestore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a thread-safe, in-memory Store for testing and development.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[uuid.UUID]*ProfileImage
}

// NewMemoryStore returns a ready-to-use MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[uuid.UUID]*ProfileImage)}
}

func (s *MemoryStore) Save(_ context.Context, img *ProfileImage) error {
	img.Size = int64(len(img.Data))
	img.UploadedAt = time.Now().UTC()

	stored := *img
	stored.Data = make([]byte, len(img.Data))
	copy(stored.Data, img.Data)

	s.mu.Lock()
	s.images[img.UserID] = &stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, userID uuid.UUID) (*ProfileImage, error) {
	s.mu.RLock()
	img, ok := s.images[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrImageNotFound
	}
	out := *img
	return &out, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[userID]; !ok {
		return ErrImageNotFound
	}
	delete(s.images, userID)
	return nil
}
