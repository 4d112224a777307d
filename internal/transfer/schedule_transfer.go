package transfer

import "time"

type CarouselCreation struct {
	Title  string `json:"title"`
	Aspect string `json:"aspect"`
}

type CaptionRequest struct {
	Preset string `json:"preset"`
}

type ScheduleRequest struct {
	CarouselID string `json:"carousel_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Timezone   string `json:"timezone"`
}

type EntryResponse struct {
	CarouselID  string    `json:"carousel_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Timezone    string    `json:"timezone"`
	LocalTime   string    `json:"local_time"`
	Status      string    `json:"status"`
}

type CellResponse struct {
	Key       string          `json:"key"`
	Day       int             `json:"day,omitempty"`
	IsPadding bool            `json:"is_padding"`
	IsPast    bool            `json:"is_past"`
	IsToday   bool            `json:"is_today"`
	Entries   []EntryResponse `json:"entries,omitempty"`
}

type MonthResponse struct {
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	Timezone string         `json:"timezone"`
	Cells    []CellResponse `json:"cells"`
}

type ScheduleResponse struct {
	Entry      EntryResponse `json:"entry"`
	Resolution string        `json:"resolution"`
}
