package calculator

import (
	"errors"
	"math"
	"time"

	"TickerSentinel/internal/model"
)

// ErrInsufficientData is returned when a window cannot be computed from
// the bars available. Callers skip the window, never treat it as zero.
var ErrInsufficientData = errors.New("insufficient data for window")

// TrailingStats computes window statistics over exactly the last n bars.
func TrailingStats(bars []model.Bar, n int) (model.WindowStats, error) {
	if n <= 0 {
		return model.WindowStats{}, errors.New("window length must be positive")
	}
	if len(bars) < n {
		return model.WindowStats{}, ErrInsufficientData
	}
	return statsOf(bars[len(bars)-n:]), nil
}

// StatsSince computes window statistics over all bars with timestamp at
// or after start.
func StatsSince(bars []model.Bar, start time.Time) (model.WindowStats, error) {
	first := len(bars)
	for i, b := range bars {
		if !b.Time.Before(start) {
			first = i
			break
		}
	}
	if first == len(bars) {
		return model.WindowStats{}, ErrInsufficientData
	}
	return statsOf(bars[first:]), nil
}

// statsOf averages closes and takes the minimum of lows. The asymmetry
// is deliberate: the average tracks settlement, the minimum tracks the
// worst intraday dip.
func statsOf(bars []model.Bar) model.WindowStats {
	sum := 0.0
	min := math.Inf(1)
	for _, b := range bars {
		sum += b.Close
		if b.Low < min {
			min = b.Low
		}
	}
	return model.WindowStats{
		Average: sum / float64(len(bars)),
		Minimum: min,
	}
}
