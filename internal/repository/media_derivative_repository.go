package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
)

type MediaDerivativeRepository interface {
	Get(ctx context.Context, mediaID uuid.UUID, typeCode string) (*models.MediaDerivative, error)
}

type mediaDerivativeRepository struct {
	db *sql.DB
}

func NewMediaDerivativeRepository(db *sql.DB) MediaDerivativeRepository {
	return &mediaDerivativeRepository{db: db}
}

func (r *mediaDerivativeRepository) Get(ctx context.Context, mediaID uuid.UUID, typeCode string) (*models.MediaDerivative, error) {
	query := `
		SELECT media_id, type_code, bucket, path
		FROM media_derivative
		WHERE media_id = $1 AND type_code = $2
	`
	var d models.MediaDerivative
	err := r.db.QueryRowContext(ctx, query, mediaID, typeCode).Scan(&d.MediaID, &d.TypeCode, &d.Bucket, &d.Path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get media derivative: %w", err)
	}
	return &d, nil
}
