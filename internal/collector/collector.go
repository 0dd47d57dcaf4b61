package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"TickerSentinel/internal/model"
)

// ErrNoPrice is returned when no current price can be determined from
// any source, live or cached.
var ErrNoPrice = errors.New("no current price available")

// BarStore is the persistence the collector keeps fresh and reads from.
type BarStore interface {
	UpsertBars(ticker, interval string, bars []model.Bar) (int, error)
	LoadBars(ticker, interval string, since time.Time) ([]model.Bar, error)
	LastUpdate() (time.Time, bool, error)
	SetLastUpdate(t time.Time) error
}

// Config holds the collector's fetch spans.
type Config struct {
	Tickers      []string
	Location     *time.Location
	HistoryDays  int
	IntradayDays int
}

// Collector keeps the bar store fresh and serves the engine's series.
// History is refreshed at most once per local day, gated by the store's
// last-update marker, so repeated runs reuse the cached bars.
type Collector struct {
	fetcher Fetcher
	store   BarStore
	cfg     Config
	now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, store BarStore, cfg Config) *Collector {
	return &Collector{fetcher: fetcher, store: store, cfg: cfg, now: time.Now}
}

// WithClock overrides the collector's clock.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// localDate truncates a time to its calendar date in the configured zone.
func (c *Collector) localDate(t time.Time) time.Time {
	local := t.In(c.cfg.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.cfg.Location)
}

// EnsureFresh refreshes all cached history on the first call of a local
// day. Per-ticker fetch failures are logged and skipped; the remaining
// tickers still refresh.
func (c *Collector) EnsureFresh(ctx context.Context) error {
	now := c.now()
	last, ok, err := c.store.LastUpdate()
	if err != nil {
		log.Warn().Err(err).Msg("last-update marker unreadable, refreshing anyway")
	}
	if ok && c.localDate(last).Equal(c.localDate(now)) {
		log.Debug().Msg("history already refreshed today")
		return nil
	}
	log.Info().Str("source", c.fetcher.Name()).Msg("first run of the day, refreshing cached history")

	for _, ticker := range c.cfg.Tickers {
		if daily, err := c.fetcher.FetchDailyBars(ctx, ticker, c.cfg.HistoryDays); err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("daily history fetch failed")
		} else if n, err := c.store.UpsertBars(ticker, model.IntervalDaily, daily); err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("daily history upsert failed")
		} else {
			log.Info().Str("ticker", ticker).Int("bars", n).Msg("cached daily history")
		}

		if intra, err := c.fetcher.FetchIntradayBars(ctx, ticker, c.cfg.IntradayDays); err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("intraday fetch failed")
		} else if n, err := c.store.UpsertBars(ticker, model.Interval5Min, intra); err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("intraday upsert failed")
		} else {
			log.Info().Str("ticker", ticker).Int("bars", n).Msg("cached intraday bars")
		}
	}

	if err := c.store.SetLastUpdate(now.UTC()); err != nil {
		return fmt.Errorf("set last update: %w", err)
	}
	return nil
}

// DailySeries returns the cached daily bars for a ticker with today's
// intraday activity folded into the final bar: today's close becomes the
// mean of intraday closes, today's low the minimum of intraday lows.
func (c *Collector) DailySeries(ctx context.Context, ticker string) (model.PriceSeries, error) {
	if err := c.EnsureFresh(ctx); err != nil {
		log.Warn().Err(err).Msg("history refresh incomplete, using cached bars")
	}
	now := c.now()
	since := now.AddDate(0, 0, -(c.cfg.HistoryDays + 7)).UTC()
	bars, err := c.store.LoadBars(ticker, model.IntervalDaily, since)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("load daily bars for %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return model.PriceSeries{Ticker: ticker}, nil
	}

	todayStart := c.localDate(now).UTC()
	intra, err := c.store.LoadBars(ticker, model.Interval5Min, todayStart)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("intraday load failed, using history only")
		intra = nil
	}
	if fresh, err := c.fetcher.FetchIntradayBars(ctx, ticker, 1); err == nil {
		intra = mergeToday(intra, fresh, todayStart)
	}
	if len(intra) > 0 {
		closeMean, lowMin := summarize(intra)
		last := bars[len(bars)-1]
		if c.localDate(last.Time).Equal(c.localDate(now)) {
			bars[len(bars)-1].Close = closeMean
			bars[len(bars)-1].Low = lowMin
		} else {
			bars = append(bars, model.Bar{Time: now.UTC(), Close: closeMean, Low: lowMin})
		}
	}

	return model.PriceSeries{Ticker: ticker, Bars: bars}, nil
}

// IntradaySeries returns the cached 5-minute bars at or after since.
func (c *Collector) IntradaySeries(ctx context.Context, ticker string, since time.Time) (model.PriceSeries, error) {
	if err := c.EnsureFresh(ctx); err != nil {
		log.Warn().Err(err).Msg("history refresh incomplete, using cached bars")
	}
	bars, err := c.store.LoadBars(ticker, model.Interval5Min, since)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("load intraday bars for %s: %w", ticker, err)
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars}, nil
}

// CurrentPrice fetches the live price, falling back to the last cached
// daily close when the live source has nothing.
func (c *Collector) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	price, err := c.fetcher.FetchCurrentPrice(ctx, ticker)
	if err == nil && price > 0 {
		return price, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("live price fetch failed, trying cached close")
	}
	since := c.now().AddDate(0, 0, -(c.cfg.HistoryDays + 7)).UTC()
	bars, loadErr := c.store.LoadBars(ticker, model.IntervalDaily, since)
	if loadErr != nil || len(bars) == 0 {
		return 0, fmt.Errorf("%s: %w", ticker, ErrNoPrice)
	}
	return bars[len(bars)-1].Close, nil
}

// mergeToday overlays freshly fetched intraday bars for today onto the
// cached ones, preferring the fresh copy on timestamp collisions.
func mergeToday(cached, fresh []model.Bar, todayStart time.Time) []model.Bar {
	byTime := make(map[time.Time]model.Bar, len(cached)+len(fresh))
	for _, b := range cached {
		byTime[b.Time] = b
	}
	for _, b := range fresh {
		if b.Time.Before(todayStart) {
			continue
		}
		byTime[b.Time] = b
	}
	merged := make([]model.Bar, 0, len(byTime))
	for _, b := range byTime {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Time.Before(merged[j].Time) })
	return merged
}

func summarize(bars []model.Bar) (closeMean, lowMin float64) {
	sum := 0.0
	lowMin = bars[0].Low
	for _, b := range bars {
		sum += b.Close
		if b.Low < lowMin {
			lowMin = b.Low
		}
	}
	return sum / float64(len(bars)), lowMin
}
