package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
)

type MediaRepository interface {
	Create(ctx context.Context, tx *sql.Tx, m *models.Media) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	FindByLocation(ctx context.Context, bucket, path string, userID int64) (*models.Media, error)
	ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.Media, error)
}

type mediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) MediaRepository {
	return &mediaRepository{db: db}
}

const mediaColumns = `id, user_id, bucket, path, filename, mime_type, size_bytes, created_at`

func scanMedia(row interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	if err := row.Scan(&m.ID, &m.UserID, &m.Bucket, &m.Path, &m.Filename, &m.MimeType, &m.SizeBytes, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mediaRepository) Create(ctx context.Context, tx *sql.Tx, m *models.Media) (uuid.UUID, error) {
	query := `
		INSERT INTO media (user_id, bucket, path, filename, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id uuid.UUID
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, m.UserID, m.Bucket, m.Path, m.Filename, m.MimeType, m.SizeBytes).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, m.UserID, m.Bucket, m.Path, m.Filename, m.MimeType, m.SizeBytes).Scan(&id)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("create media: %w", err)
	}
	return id, nil
}

func (r *mediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`

	m, err := scanMedia(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get media by id: %w", err)
	}
	return m, nil
}

// FindByLocation returns nil, nil when the user owns no media at bucket/path.
func (r *mediaRepository) FindByLocation(ctx context.Context, bucket, path string, userID int64) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE bucket = $1 AND path = $2 AND user_id = $3 LIMIT 1`

	m, err := scanMedia(r.db.QueryRowContext(ctx, query, bucket, path, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find media by location: %w", err)
	}
	return m, nil
}

func (r *mediaRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var list []*models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
