package timezone

import "time"

// Cell is one square of a month grid. Padding cells carry no date.
type Cell struct {
	Key       string `json:"key"`
	Day       int    `json:"day"`
	IsPadding bool   `json:"is_padding"`
	IsPast    bool   `json:"is_past"`
	IsToday   bool   `json:"is_today"`
}

// MonthCells lays out year/month as whole weeks. Leading padding reaches the
// weekday of the 1st relative to weekStart; trailing padding fills the last
// week to a multiple of 7. Past and today flags use now rendered in loc.
func MonthCells(year int, month time.Month, now time.Time, loc *time.Location, weekStart time.Weekday) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	today := now.In(loc).Format(DateLayout)

	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	cells := make([]Cell, 0, 42)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Key: padKey("lead", i), IsPadding: true})
	}
	for d := 1; d <= days; d++ {
		key := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		cells = append(cells, Cell{
			Key:     key,
			Day:     d,
			IsToday: key == today,
			// Keys compare lexically in date order.
			IsPast: key < today,
		})
	}
	for i := 0; len(cells)%7 != 0; i++ {
		cells = append(cells, Cell{Key: padKey("trail", i), IsPadding: true})
	}
	return cells
}

func padKey(side string, i int) string {
	return "pad-" + side + "-" + string(rune('0'+i))
}

// ParseWeekStart maps "monday" to time.Monday and anything else to Sunday.
func ParseWeekStart(s string) time.Weekday {
	if s == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// MonthRange returns the UTC instants bounding every wall-clock moment of the
// month in any zone: one day of slack on each side.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, 0, -1), start.AddDate(0, 1, 1)
}
