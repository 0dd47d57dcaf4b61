package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"TickerSentinel/internal/calculator"
	"TickerSentinel/internal/model"
)

// MarketData is the engine's view of the data collection layer. Empty
// series mean "insufficient data", never zero.
type MarketData interface {
	// DailySeries returns the cached daily bars for a ticker with
	// today's intraday activity merged into the last bar.
	DailySeries(ctx context.Context, ticker string) (model.PriceSeries, error)
	// IntradaySeries returns 5-minute bars at or after since.
	IntradaySeries(ctx context.Context, ticker string, since time.Time) (model.PriceSeries, error)
	// CurrentPrice returns the most recent traded price.
	CurrentPrice(ctx context.Context, ticker string) (float64, error)
}

// ExecutionStore persists audit records and answers dedup queries.
type ExecutionStore interface {
	ReportedPairSource
	SaveExecution(exec *model.Execution) error
	LogEmail(executionID, subject string, recipients []string, rowCount int) error
}

// Delivery describes a successfully dispatched notification.
type Delivery struct {
	Subject    string
	Recipients []string
}

// Notifier dispatches the two report shapes.
type Notifier interface {
	SendDaily(ctx context.Context, rows []model.BucketRow, fresh []model.TickerSignal) (*Delivery, error)
	SendWeekly(ctx context.Context, rows []model.TickerSignal) (*Delivery, error)
}

// Config is the immutable engine configuration.
type Config struct {
	Tickers   []string
	Location  *time.Location
	ShortDays int
	LongDays  int
	WeekSpans int
}

// RunResult summarizes one engine run.
type RunResult struct {
	ExecutionID string
	Tickers     int
	NewSignals  int
	Notified    bool
}

// Engine orchestrates one run: series per ticker, stats per window,
// classification, dedup, notification, audit persistence. Tickers are
// processed sequentially and in isolation; one ticker's failure never
// aborts the others.
type Engine struct {
	cfg      Config
	data     MarketData
	store    ExecutionStore
	notifier Notifier
	bucket   *BucketClassifier
	resolver *DepthResolver
	now      func() time.Time
}

// New creates an Engine. The now function defaults to time.Now and is
// overridable for tests.
func New(cfg Config, data MarketData, store ExecutionStore, notifier Notifier) *Engine {
	return &Engine{
		cfg:      cfg,
		data:     data,
		store:    store,
		notifier: notifier,
		bucket:   NewBucketClassifier(),
		resolver: NewDepthResolver(cfg.WeekSpans),
		now:      time.Now,
	}
}

// WithClock overrides the engine's clock.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// RunDaily executes the amount-bucket mode over the fixed short/long
// trailing-day window pair and emails the full threshold table when at
// least one new signal survived dedup.
func (e *Engine) RunDaily(ctx context.Context) (*RunResult, error) {
	now := e.now()
	dedup := e.loadDedup(now)

	rows := make([]model.BucketRow, 0, len(e.cfg.Tickers))
	signals := map[string][]model.TickerSignal{}

	for _, ticker := range e.cfg.Tickers {
		series, err := e.data.DailySeries(ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("daily series unavailable, skipping")
			continue
		}
		short, errS := calculator.TrailingStats(series.Bars, e.cfg.ShortDays)
		long, errL := calculator.TrailingStats(series.Bars, e.cfg.LongDays)
		if errS != nil || errL != nil {
			log.Warn().Str("ticker", ticker).Msg("insufficient history, skipping")
			continue
		}
		latest, err := e.data.CurrentPrice(ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("no current price, skipping")
			continue
		}

		stats := map[string]model.WindowStats{
			e.bucket.ShortLabel: short,
			e.bucket.LongLabel:  long,
		}
		row := model.BucketRow{
			Ticker:      ticker,
			Latest:      latest,
			AvgShort:    short.Average,
			MinShort:    short.Minimum,
			AvgLong:     long.Average,
			MinLong:     long.Minimum,
			HalfShort:   GapThreshold(short, 0.5),
			EightyShort: GapThreshold(short, 0.8),
			HalfLong:    GapThreshold(long, 0.5),
			EightyLong:  GapThreshold(long, 0.8),
			Label:       NoSignalLabel,
		}
		if sig, ok := e.bucket.Classify(ticker, latest, stats); ok {
			row.Amount = sig.Amount
			row.Label = sig.WindowLabel
			signals[sig.WindowLabel] = append(signals[sig.WindowLabel], sig)
		}
		rows = append(rows, row)
	}

	fresh := Flatten(e.bucketOrder(), dedup.Filter(signals))
	exec := e.newExecution(model.RunDailyBucket, now, signals)

	var delivery *Delivery
	if len(fresh) > 0 {
		var err error
		delivery, err = e.notifier.SendDaily(ctx, rows, fresh)
		if err != nil {
			log.Error().Err(err).Msg("daily notification failed")
		} else if delivery != nil {
			exec.Notified = true
		}
	} else {
		log.Info().Msg("no new daily signals; email will not be sent")
	}

	e.persist(exec, delivery, len(fresh))
	return &RunResult{ExecutionID: exec.ID, Tickers: len(rows), NewSignals: len(fresh), Notified: exec.Notified}, nil
}

// RunWeekly executes the week-window mode: per-ticker minimums over every
// configured depth, deepest-first assignment, dedup, email.
func (e *Engine) RunWeekly(ctx context.Context) (*RunResult, error) {
	now := e.now()
	dedup := e.loadDedup(now)

	oldest := WeekStart(now, e.cfg.Location, e.cfg.WeekSpans)
	signals := make(map[string][]model.TickerSignal, len(e.resolver.Windows))
	for _, w := range e.resolver.Windows {
		signals[w.Label] = []model.TickerSignal{}
	}

	processed := 0
	for _, ticker := range e.cfg.Tickers {
		series, err := e.data.IntradaySeries(ctx, ticker, oldest)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("intraday series unavailable, skipping")
			continue
		}
		stats := make(map[string]model.WindowStats, len(e.resolver.Windows))
		for _, w := range e.resolver.Windows {
			s, err := calculator.StatsSince(series.Bars, WeekStart(now, e.cfg.Location, w.Depth))
			if err != nil {
				continue
			}
			stats[w.Label] = s
		}
		current, err := e.data.CurrentPrice(ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("no current price, skipping")
			continue
		}
		processed++
		if sig, ok := e.resolver.Classify(ticker, current, stats); ok {
			signals[sig.WindowLabel] = append(signals[sig.WindowLabel], sig)
		}
	}

	rows := Flatten(e.resolver.Windows, dedup.Filter(signals))
	exec := e.newExecution(model.RunWeeklyScan, now, signals)

	var delivery *Delivery
	if len(rows) > 0 {
		var err error
		delivery, err = e.notifier.SendWeekly(ctx, rows)
		if err != nil {
			log.Error().Err(err).Msg("weekly notification failed")
		} else if delivery != nil {
			exec.Notified = true
		}
	} else {
		log.Info().Msg("no new weekly signals; email will not be sent")
	}

	e.persist(exec, delivery, len(rows))
	return &RunResult{ExecutionID: exec.ID, Tickers: processed, NewSignals: len(rows), Notified: exec.Notified}, nil
}

// Flatten orders the per-window signal lists into report rows following
// the given window order.
func Flatten(windows []model.Window, byWindow map[string][]model.TickerSignal) []model.TickerSignal {
	var rows []model.TickerSignal
	for _, w := range windows {
		rows = append(rows, byWindow[w.Label]...)
	}
	return rows
}

// bucketOrder lists the bucket tier labels as pseudo-windows so Flatten
// yields rows in descending-priority order.
func (e *Engine) bucketOrder() []model.Window {
	windows := make([]model.Window, len(BucketTiers))
	for i, t := range BucketTiers {
		windows[i] = model.Window{Label: t.Label}
	}
	return windows
}

func (e *Engine) loadDedup(now time.Time) *DedupState {
	dedup, err := LoadDedupState(e.store, now, e.cfg.Location)
	if err != nil {
		log.Error().Err(err).Msg("dedup state unavailable, continuing without suppression")
		return EmptyDedupState()
	}
	log.Info().Int("pairs", dedup.Size()).Msg("loaded previously reported pairs for today")
	return dedup
}

func (e *Engine) newExecution(kind model.RunKind, now time.Time, signals map[string][]model.TickerSignal) *model.Execution {
	return &model.Execution{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: now.UTC(),
		Signals:   signals,
	}
}

// persist writes the audit record and, when a delivery happened, the
// email log entry. Store failures are logged, never fatal, and cannot
// corrupt dedup state: an unsaved execution simply leaves its pairs
// eligible for the next run.
func (e *Engine) persist(exec *model.Execution, delivery *Delivery, rowCount int) {
	if err := e.store.SaveExecution(exec); err != nil {
		log.Error().Err(err).Str("kind", string(exec.Kind)).Msg("save execution failed")
		return
	}
	if delivery == nil {
		return
	}
	if err := e.store.LogEmail(exec.ID, delivery.Subject, delivery.Recipients, rowCount); err != nil {
		log.Error().Err(err).Msg("email log entry failed")
	}
}

// String implements fmt.Stringer for run summaries in logs.
func (r *RunResult) String() string {
	return fmt.Sprintf("tickers=%d new=%d notified=%v", r.Tickers, r.NewSignals, r.Notified)
}
