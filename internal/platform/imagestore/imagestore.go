// Package imagestore provides profile image storage for clinic users. It
// defines the Store interface, an in-memory implementation for testing and
// development, and a Postgres-backed implementation that keeps one image per
// user.
package imagestore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrImageNotFound    = errors.New("image not found")
	ErrImageTooLarge    = errors.New("image exceeds maximum allowed size")
	ErrInvalidImageType = errors.New("content type is not an allowed image type")
	ErrMissingImage     = errors.New("image file is required")
)

// AllowedContentTypes lists the image MIME types accepted for upload.
var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ProfileImage is a user's profile picture. Each user has at most one;
// uploading again replaces the previous image.
type ProfileImage struct {
	UserID      uuid.UUID `json:"userId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"-"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Store defines the contract for profile image backends.
type Store interface {
	// Save stores the image, replacing any existing image for the same user.
	Save(ctx context.Context, img *ProfileImage) error
	// Load returns the image for a user, or ErrImageNotFound.
	Load(ctx context.Context, userID uuid.UUID) (*ProfileImage, error)
	// Delete removes a user's image, or returns ErrImageNotFound.
	Delete(ctx context.Context, userID uuid.UUID) error
}
