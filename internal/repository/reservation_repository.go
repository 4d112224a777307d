package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/models"
)

// ReservationRepository calls the schedule_carousel and unschedule_carousel
// database functions. Exclusivity is enforced inside the database; this
// layer only translates its answers.
type ReservationRepository interface {
	Schedule(ctx context.Context, userID int64, carouselID uuid.UUID, at time.Time, zone string) (*models.ScheduledEntry, error)
	Unschedule(ctx context.Context, userID int64, carouselID uuid.UUID) error
}

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Schedule(ctx context.Context, userID int64, carouselID uuid.UUID, at time.Time, zone string) (*models.ScheduledEntry, error) {
	query := `SELECT carousel_id, carousel_title, at, zone, carousel_status FROM schedule_carousel($1, $2, $3, $4)`

	var e models.ScheduledEntry
	err := r.db.QueryRowContext(ctx, query, carouselID, userID, at.UTC(), zone).
		Scan(&e.CarouselID, &e.Title, &e.ScheduledAt, &e.Timezone, &e.Status)
	if err != nil {
		return nil, fmt.Errorf("schedule carousel: %w", classify(err))
	}
	return &e, nil
}

func (r *reservationRepository) Unschedule(ctx context.Context, userID int64, carouselID uuid.UUID) error {
	query := `SELECT unschedule_carousel($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, carouselID, userID); err != nil {
		return fmt.Errorf("unschedule carousel: %w", classify(err))
	}
	return nil
}

// classify maps database errors onto the application's error kinds.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", "23P01":
			return fmt.Errorf("%w: %s", apperr.ErrConflict, pqErr.Message)
		case "P0002":
			return fmt.Errorf("%w: %s", apperr.ErrNotFound, pqErr.Message)
		case "42501":
			return fmt.Errorf("%w: %s", apperr.ErrAuth, pqErr.Message)
		}
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
}
