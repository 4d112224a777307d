package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
)

type CarouselSlideRepository interface {
	DeleteByCarouselID(ctx context.Context, tx *sql.Tx, carouselID uuid.UUID) error
	UpsertBatch(ctx context.Context, tx *sql.Tx, carouselID uuid.UUID, userID int64, slides []models.CarouselSlide) error
	ListByCarouselID(ctx context.Context, carouselID uuid.UUID) ([]*models.CarouselSlide, error)
}

type carouselSlideRepository struct {
	db *sql.DB
}

func NewCarouselSlideRepository(db *sql.DB) CarouselSlideRepository {
	return &carouselSlideRepository{db: db}
}

func (r *carouselSlideRepository) DeleteByCarouselID(ctx context.Context, tx *sql.Tx, carouselID uuid.UUID) error {
	query := `DELETE FROM carousel_slide WHERE carousel_id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, carouselID)
	} else {
		_, err = r.db.ExecContext(ctx, query, carouselID)
	}
	if err != nil {
		return fmt.Errorf("delete slides: %w", err)
	}
	return nil
}

// UpsertBatch writes all slides in one statement keyed by (carousel_id, position),
// so writing the same set twice overwrites instead of duplicating.
func (r *carouselSlideRepository) UpsertBatch(ctx context.Context, tx *sql.Tx, carouselID uuid.UUID, userID int64, slides []models.CarouselSlide) error {
	if len(slides) == 0 {
		return nil
	}
	query := `
		INSERT INTO carousel_slide (carousel_id, user_id, position, media_id)
		SELECT $1, $2, t.position, t.media_id
		FROM unnest($3::int[], $4::uuid[]) AS t(position, media_id)
		ON CONFLICT (carousel_id, position)
		DO UPDATE SET media_id = EXCLUDED.media_id, user_id = EXCLUDED.user_id
	`
	positions := make([]int64, len(slides))
	mediaIDs := make([]string, len(slides))
	for i, s := range slides {
		positions[i] = int64(s.Position)
		mediaIDs[i] = s.MediaID.String()
	}

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, carouselID, userID, pq.Array(positions), pq.Array(mediaIDs))
	} else {
		_, err = r.db.ExecContext(ctx, query, carouselID, userID, pq.Array(positions), pq.Array(mediaIDs))
	}
	if err != nil {
		return fmt.Errorf("upsert slides: %w", err)
	}
	return nil
}

func (r *carouselSlideRepository) ListByCarouselID(ctx context.Context, carouselID uuid.UUID) ([]*models.CarouselSlide, error) {
	query := `
		SELECT carousel_id, user_id, position, media_id
		FROM carousel_slide
		WHERE carousel_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, carouselID)
	if err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	defer rows.Close()

	var slides []*models.CarouselSlide
	for rows.Next() {
		var s models.CarouselSlide
		if err := rows.Scan(&s.CarouselID, &s.UserID, &s.Position, &s.MediaID); err != nil {
			return nil, fmt.Errorf("scan slide: %w", err)
		}
		slides = append(slides, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	return slides, nil
}
