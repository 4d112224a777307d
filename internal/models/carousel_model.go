package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Carousel struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	UserID      int64          `db:"user_id" json:"user_id"`
	Title       string         `db:"title" json:"title"`
	Caption     sql.NullString `db:"caption" json:"-"`
	Status      string         `db:"status" json:"status"` // draft, ready, scheduled, posted, failed
	ScheduledAt sql.NullTime   `db:"scheduled_at" json:"-"`
	Timezone    sql.NullString `db:"timezone" json:"-"`
	Aspect      string         `db:"aspect" json:"aspect"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

type CarouselSlide struct {
	CarouselID uuid.UUID `db:"carousel_id" json:"carousel_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Position   int       `db:"position" json:"position"`
	MediaID    uuid.UUID `db:"media_id" json:"media_id"`
}

// ScheduledEntry is the reservation linking one carousel to one instant.
type ScheduledEntry struct {
	CarouselID  uuid.UUID `json:"carousel_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Timezone    string    `json:"timezone"`
	Status      string    `json:"status"`
}

const (
	CarouselStatusDraft     = "draft"
	CarouselStatusReady     = "ready"
	CarouselStatusScheduled = "scheduled"
	CarouselStatusPosted    = "posted"
	CarouselStatusFailed    = "failed"
)

const (
	AspectSquare   = "1:1"
	AspectPortrait = "4:5"
)
