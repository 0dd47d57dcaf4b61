package strategy

import (
	"fmt"
	"time"

	"TickerSentinel/internal/model"
)

// ThisWeekLabel names the depth-0 window.
const ThisWeekLabel = "sinceThisWeek"

// WeekLabel returns the label for a week window of the given depth.
func WeekLabel(depth int) string {
	if depth == 0 {
		return ThisWeekLabel
	}
	return fmt.Sprintf("sincePast%dWeeks", depth)
}

// WeekWindows builds the weekly window list ordered deepest-first, so a
// linear scan assigns each ticker to the longest lookback it qualifies
// for. maxSpan is the deepest depth (e.g. 14).
func WeekWindows(maxSpan int) []model.Window {
	windows := make([]model.Window, 0, maxSpan+1)
	for d := maxSpan; d >= 0; d-- {
		windows = append(windows, model.Window{Label: WeekLabel(d), Depth: d})
	}
	return windows
}

// WeekStart returns the lower bound of a week window: Monday of the
// current week in loc, minus depth weeks, at 09:00 local, converted to
// UTC for comparison against stored bar timestamps.
func WeekStart(now time.Time, loc *time.Location, depth int) time.Time {
	local := now.In(loc)
	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	monday := local.AddDate(0, 0, -daysSinceMonday-7*depth)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 9, 0, 0, 0, loc).UTC()
}

// DayRange returns the UTC bounds of "today" in loc: local midnight to
// the following local midnight. Dedup lookups are scoped to this range.
func DayRange(now time.Time, loc *time.Location) (start, end time.Time) {
	local := now.In(loc)
	startLocal := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return startLocal.UTC(), startLocal.AddDate(0, 0, 1).UTC()
}
