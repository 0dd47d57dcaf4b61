package strategy

import (
	"fmt"
	"time"

	"TickerSentinel/internal/model"
)

// ReportedPairSource lists (ticker, window label) pairs that belong to
// executions created inside [start, end) and marked notified.
type ReportedPairSource interface {
	TodayNotifiedPairs(start, end time.Time) (map[model.ReportedPair]struct{}, error)
}

// DedupState holds the pairs already notified during the current local
// day. A new day starts clean because the lookup is scoped to today's
// executions; nothing is ever explicitly deleted.
type DedupState struct {
	reported map[model.ReportedPair]struct{}
}

// LoadDedupState queries the source for today's notified pairs, with
// "today" bounded by local midnights in loc converted to UTC.
func LoadDedupState(src ReportedPairSource, now time.Time, loc *time.Location) (*DedupState, error) {
	start, end := DayRange(now, loc)
	pairs, err := src.TodayNotifiedPairs(start, end)
	if err != nil {
		return nil, fmt.Errorf("load reported pairs: %w", err)
	}
	return &DedupState{reported: pairs}, nil
}

// EmptyDedupState returns a state that suppresses nothing. Used when the
// store is unavailable; re-reporting beats losing signals.
func EmptyDedupState() *DedupState {
	return &DedupState{reported: map[model.ReportedPair]struct{}{}}
}

// Reported reports whether the pair was already notified today.
func (d *DedupState) Reported(p model.ReportedPair) bool {
	_, ok := d.reported[p]
	return ok
}

// Size returns the number of pairs already notified today.
func (d *DedupState) Size() int { return len(d.reported) }

// Filter returns the candidates with already-reported pairs removed.
// Every window key of the input is present in the output, so empty
// windows stay visible to the audit record.
func (d *DedupState) Filter(candidates map[string][]model.TickerSignal) map[string][]model.TickerSignal {
	filtered := make(map[string][]model.TickerSignal, len(candidates))
	for label, entries := range candidates {
		kept := make([]model.TickerSignal, 0, len(entries))
		for _, sig := range entries {
			if d.Reported(sig.Pair()) {
				continue
			}
			kept = append(kept, sig)
		}
		filtered[label] = kept
	}
	return filtered
}
