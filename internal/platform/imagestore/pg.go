package imagestore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicbook/clinicbook/internal/platform/db"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the profile_images table.
func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

// queryable abstracts pgxpool.Pool and pgx.Tx.
type queryable interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (s *pgStore) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func (s *pgStore) Save(ctx context.Context, img *ProfileImage) error {
	img.Size = int64(len(img.Data))
	img.UploadedAt = time.Now().UTC()

	_, err := s.conn(ctx).Exec(ctx, `
		INSERT INTO profile_images (user_id, file_name, content_type, size, data, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			content_type = EXCLUDED.content_type,
			size = EXCLUDED.size,
			data = EXCLUDED.data,
			uploaded_at = EXCLUDED.uploaded_at`,
		img.UserID, img.FileName, img.ContentType, img.Size, img.Data, img.UploadedAt,
	)
	return err
}

func (s *pgStore) Load(ctx context.Context, userID uuid.UUID) (*ProfileImage, error) {
	var img ProfileImage
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT user_id, file_name, content_type, size, data, uploaded_at
		FROM profile_images WHERE user_id = $1`, userID,
	).Scan(&img.UserID, &img.FileName, &img.ContentType, &img.Size, &img.Data, &img.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (s *pgStore) Delete(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.conn(ctx).Exec(ctx, `DELETE FROM profile_images WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}
