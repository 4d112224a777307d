package transfer

import "time"

type DragEvent struct {
	Event string `json:"event"`
	Index int    `json:"index"`
}

type LibraryImport struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	DisplayName string `json:"display_name"`
	SizeBytes   int64  `json:"size_bytes"`
}

type SlotResponse struct {
	Index      int    `json:"index"`
	Kind       string `json:"kind"`
	Name       string `json:"name,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

type BoardResponse struct {
	CarouselID string         `json:"carousel_id"`
	DragState  string         `json:"drag_state"`
	Ghost      *int           `json:"ghost,omitempty"`
	Slots      []SlotResponse `json:"slots"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type PersistResponse struct {
	Positions []int    `json:"positions"`
	Skipped   []string `json:"skipped,omitempty"`
}
