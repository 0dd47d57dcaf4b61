package model

import "time"

// Bar intervals stored in the price database.
const (
	IntervalDaily = "1d"
	Interval5Min  = "5m"
)

// Bar represents a single candlestick.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds ordered bars for one ticker, oldest first,
// strictly increasing in time.
type PriceSeries struct {
	Ticker string
	Bars   []Bar
}

// Len returns the number of bars in the series.
func (s PriceSeries) Len() int { return len(s.Bars) }
