package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "sinceThisWeek", WeekLabel(0))
	assert.Equal(t, "sincePast1Weeks", WeekLabel(1))
	assert.Equal(t, "sincePast14Weeks", WeekLabel(14))
}

func TestWeekWindows_DeepestFirst(t *testing.T) {
	windows := WeekWindows(3)
	require.Len(t, windows, 4)
	assert.Equal(t, "sincePast3Weeks", windows[0].Label)
	assert.Equal(t, 3, windows[0].Depth)
	assert.Equal(t, "sinceThisWeek", windows[3].Label)
	assert.Equal(t, 0, windows[3].Depth)
}

func TestWeekStart_MidWeek(t *testing.T) {
	// Wednesday 2024-05-15 noon UTC; Monday of that week is 2024-05-13.
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC), WeekStart(now, time.UTC, 0))
	assert.Equal(t, time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC), WeekStart(now, time.UTC, 1))
	assert.Equal(t, time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC), WeekStart(now, time.UTC, 14))
}

func TestWeekStart_SundayBelongsToPrecedingMonday(t *testing.T) {
	// Sunday 2024-05-19 still belongs to the week that began 2024-05-13.
	now := time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC), WeekStart(now, time.UTC, 0))
}

func TestWeekStart_MondayMorning(t *testing.T) {
	// Monday before 09:00 still anchors to that same Monday.
	now := time.Date(2024, 5, 13, 7, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC), WeekStart(now, time.UTC, 0))
}

func TestWeekStart_LocalZoneConvertedToUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	// 2024-05-15 is a Wednesday in Toronto too (EDT, UTC-4).
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, loc)
	got := WeekStart(now, loc, 0)
	assert.Equal(t, time.Date(2024, 5, 13, 13, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestDayRange(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	now := time.Date(2024, 5, 15, 3, 0, 0, 0, time.UTC) // still May 14 in Toronto
	start, end := DayRange(now, loc)
	assert.Equal(t, time.Date(2024, 5, 14, 4, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 5, 15, 4, 0, 0, 0, time.UTC), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
