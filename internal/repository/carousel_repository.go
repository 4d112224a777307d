package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
)

type CarouselRepository interface {
	Create(ctx context.Context, c *models.Carousel) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Carousel, error)
	CheckByUserID(ctx context.Context, id uuid.UUID, userID int64) (bool, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string) error
	UpdateCaption(ctx context.Context, id uuid.UUID, caption string) error
	ListScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.ScheduledEntry, error)
	ListScheduled(ctx context.Context, userID int64) ([]*models.ScheduledEntry, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type carouselRepository struct {
	db *sql.DB
}

func NewCarouselRepository(db *sql.DB) CarouselRepository {
	return &carouselRepository{db: db}
}

const carouselColumns = `id, user_id, title, caption, status, scheduled_at, timezone, aspect, created_at`

func scanCarousel(row interface{ Scan(...any) error }) (*models.Carousel, error) {
	var c models.Carousel
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Caption, &c.Status, &c.ScheduledAt, &c.Timezone, &c.Aspect, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *carouselRepository) Create(ctx context.Context, c *models.Carousel) (uuid.UUID, error) {
	query := `
		INSERT INTO carousel (user_id, title, caption, status, aspect)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	status := c.Status
	if status == "" {
		status = models.CarouselStatusDraft
	}
	aspect := c.Aspect
	if aspect == "" {
		aspect = models.AspectPortrait
	}

	var id uuid.UUID
	if err := r.db.QueryRowContext(ctx, query, c.UserID, c.Title, c.Caption, status, aspect).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("create carousel: %w", err)
	}
	return id, nil
}

func (r *carouselRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Carousel, error) {
	query := `SELECT ` + carouselColumns + ` FROM carousel WHERE id = $1`

	c, err := scanCarousel(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get carousel by id: %w", err)
	}
	return c, nil
}

func (r *carouselRepository) CheckByUserID(ctx context.Context, id uuid.UUID, userID int64) (bool, error) {
	query := "SELECT 1 FROM carousel WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check carousel owner: %w", err)
	}
	return result == 1, nil
}

func (r *carouselRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string) error {
	query := `
		UPDATE carousel
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, time.Now(), id)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, time.Now(), id)
	}
	if err != nil {
		return fmt.Errorf("update carousel status: %w", err)
	}
	return nil
}

func (r *carouselRepository) UpdateCaption(ctx context.Context, id uuid.UUID, caption string) error {
	query := `UPDATE carousel SET caption = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, caption, time.Now(), id); err != nil {
		return fmt.Errorf("update carousel caption: %w", err)
	}
	return nil
}

func (r *carouselRepository) ListScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]*models.ScheduledEntry, error) {
	query := `
		SELECT id, title, scheduled_at, COALESCE(timezone, ''), status
		FROM carousel
		WHERE user_id = $1
		  AND scheduled_at IS NOT NULL
		  AND scheduled_at >= $2
		  AND scheduled_at < $3
		ORDER BY scheduled_at
	`
	return r.listEntries(ctx, query, userID, from, to)
}

func (r *carouselRepository) ListScheduled(ctx context.Context, userID int64) ([]*models.ScheduledEntry, error) {
	query := `
		SELECT id, title, scheduled_at, COALESCE(timezone, ''), status
		FROM carousel
		WHERE user_id = $1 AND status = 'scheduled' AND scheduled_at IS NOT NULL
		ORDER BY scheduled_at
	`
	return r.listEntries(ctx, query, userID)
}

func (r *carouselRepository) listEntries(ctx context.Context, query string, args ...any) ([]*models.ScheduledEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scheduled carousels: %w", err)
	}
	defer rows.Close()

	var entries []*models.ScheduledEntry
	for rows.Next() {
		var e models.ScheduledEntry
		if err := rows.Scan(&e.CarouselID, &e.Title, &e.ScheduledAt, &e.Timezone, &e.Status); err != nil {
			return nil, fmt.Errorf("scan scheduled carousel: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scheduled carousels: %w", err)
	}
	return entries, nil
}

func (r *carouselRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM carousel WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("remove carousel: %w", err)
	}
	return nil
}
