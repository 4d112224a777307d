package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthCellsPadding(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	// March 2025 starts on a Saturday and has 31 days.
	cells := MonthCells(2025, time.March, now, time.UTC, time.Sunday)

	assert.Zero(t, len(cells)%7)
	for i := 0; i < 6; i++ {
		assert.True(t, cells[i].IsPadding, "cell %d", i)
	}
	assert.Equal(t, "2025-03-01", cells[6].Key)
	assert.Equal(t, 1, cells[6].Day)
	assert.Len(t, cells, 42)
	assert.True(t, cells[len(cells)-1].IsPadding)
}

func TestMonthCellsWeekStartMonday(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	cells := MonthCells(2025, time.March, now, time.UTC, time.Monday)

	assert.Equal(t, "2025-03-01", cells[5].Key)
	assert.Zero(t, len(cells)%7)
}

func TestMonthCellsFlags(t *testing.T) {
	// 2025-03-15 23:30 UTC is already the 16th in Tokyo.
	now := time.Date(2025, 3, 15, 23, 30, 0, 0, time.UTC)
	tokyo, err := Load("Asia/Tokyo")
	require.NoError(t, err)

	cells := MonthCells(2025, time.March, now, tokyo, time.Sunday)

	byKey := map[string]Cell{}
	for _, c := range cells {
		byKey[c.Key] = c
	}
	assert.True(t, byKey["2025-03-15"].IsPast)
	assert.True(t, byKey["2025-03-16"].IsToday)
	assert.False(t, byKey["2025-03-16"].IsPast)
	assert.False(t, byKey["2025-03-17"].IsPast)
}

func TestMonthCellsKeysAreUnique(t *testing.T) {
	cells := MonthCells(2024, time.February, time.Now(), time.UTC, time.Sunday)

	seen := map[string]bool{}
	for _, c := range cells {
		assert.False(t, seen[c.Key], c.Key)
		seen[c.Key] = true
	}
}

func TestMonthRangeCoversAllZones(t *testing.T) {
	from, to := MonthRange(2025, time.March)

	earliest, _, _ := WallTimeToInstant("2025-03-01", "00:00", "Pacific/Kiritimati")
	latest, _, _ := WallTimeToInstant("2025-03-31", "23:59", "Pacific/Pago_Pago")

	assert.True(t, from.Before(earliest))
	assert.True(t, to.After(latest))
}
