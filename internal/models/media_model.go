package models

import (
	"time"

	"github.com/google/uuid"
)

type Media struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Bucket    string    `db:"bucket" json:"bucket"`
	Path      string    `db:"path" json:"path"`
	Filename  string    `db:"filename" json:"filename"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	SizeBytes int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MediaDerivative is a rendition of a Media object produced by the workflow engine.
type MediaDerivative struct {
	MediaID  uuid.UUID `db:"media_id" json:"media_id"`
	TypeCode string    `db:"type_code" json:"type_code"`
	Bucket   string    `db:"bucket" json:"bucket"`
	Path     string    `db:"path" json:"path"`
}

const (
	DerivativeThumb    = "thumb"
	DerivativePortrait = "4x5"
	DerivativeSquare   = "1x1"
)
