package model

import "time"

// RunKind distinguishes the two classification strategies.
type RunKind string

const (
	RunDailyBucket RunKind = "DAILY_BUCKET"
	RunWeeklyScan  RunKind = "WEEKLY_SCAN"
)

// TickerSignal is one (ticker, window) qualification produced by a run.
// Amount is the suggested invest amount for bucket signals and 0 for
// weekly minimum-breach signals.
type TickerSignal struct {
	Ticker       string
	WindowLabel  string
	CurrentPrice float64
	CompareValue float64
	Amount       int
}

// ReportedPair keys the per-day dedup set.
type ReportedPair struct {
	Ticker      string
	WindowLabel string
}

// Pair returns the dedup key for a signal.
func (s TickerSignal) Pair() ReportedPair {
	return ReportedPair{Ticker: s.Ticker, WindowLabel: s.WindowLabel}
}

// Execution is the audit record persisted for every run. Signals holds
// the full pre-filter result keyed by window label; Notified is set only
// when an email with at least one row was actually delivered.
type Execution struct {
	ID        string
	Kind      RunKind
	CreatedAt time.Time
	Notified  bool
	Signals   map[string][]TickerSignal
}

// BucketRow carries the full threshold breakdown for one ticker in the
// daily report table, including tickers that produced no signal.
type BucketRow struct {
	Ticker      string
	Latest      float64
	AvgShort    float64
	MinShort    float64
	AvgLong     float64
	MinLong     float64
	HalfShort   float64
	EightyShort float64
	HalfLong    float64
	EightyLong  float64
	Amount      int
	Label       string
}
