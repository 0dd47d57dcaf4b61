package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerSentinel/internal/model"
)

// memStore is an in-memory BarStore for collector tests.
type memStore struct {
	bars       map[string][]model.Bar
	lastUpdate time.Time
	hasUpdate  bool
	upserts    int
}

func newMemStore() *memStore {
	return &memStore{bars: map[string][]model.Bar{}}
}

func key(ticker, interval string) string { return ticker + "/" + interval }

func (m *memStore) UpsertBars(ticker, interval string, bars []model.Bar) (int, error) {
	m.upserts++
	m.bars[key(ticker, interval)] = append(m.bars[key(ticker, interval)], bars...)
	return len(bars), nil
}

func (m *memStore) LoadBars(ticker, interval string, since time.Time) ([]model.Bar, error) {
	var out []model.Bar
	for _, b := range m.bars[key(ticker, interval)] {
		if !b.Time.Before(since) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) LastUpdate() (time.Time, bool, error) { return m.lastUpdate, m.hasUpdate, nil }

func (m *memStore) SetLastUpdate(t time.Time) error {
	m.lastUpdate, m.hasUpdate = t, true
	return nil
}

func testCollector(fetcher Fetcher, store BarStore, now time.Time) *Collector {
	return NewCollector(fetcher, store, Config{
		Tickers:      []string{"BCE.TO"},
		Location:     time.UTC,
		HistoryDays:  180,
		IntradayDays: 60,
	}).WithClock(func() time.Time { return now })
}

func TestEnsureFresh_RefreshesOncePerDay(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 0, 0, 0, time.UTC)
	store := newMemStore()
	c := testCollector(&MockFetcher{Price: 50}, store, now)

	require.NoError(t, c.EnsureFresh(context.Background()))
	first := store.upserts
	assert.Greater(t, first, 0)
	assert.True(t, store.hasUpdate)

	// Same day: no refetch.
	require.NoError(t, c.EnsureFresh(context.Background()))
	assert.Equal(t, first, store.upserts)
}

func TestEnsureFresh_NewDayTriggersRefresh(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.lastUpdate = now.AddDate(0, 0, -1)
	store.hasUpdate = true
	c := testCollector(&MockFetcher{Price: 50}, store, now)

	require.NoError(t, c.EnsureFresh(context.Background()))
	assert.Greater(t, store.upserts, 0)
	assert.True(t, store.lastUpdate.Equal(now))
}

func TestDailySeries_MergesTodayIntraday(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.lastUpdate, store.hasUpdate = now, true

	// Two historical daily bars, none for today.
	store.bars[key("BCE.TO", model.IntervalDaily)] = []model.Bar{
		{Time: now.AddDate(0, 0, -2), Close: 100, Low: 98},
		{Time: now.AddDate(0, 0, -1), Close: 102, Low: 99},
	}
	// Today's intraday activity comes from the fetcher.
	fetcher := &MockFetcher{
		Price: 95,
		IntradayData: []model.Bar{
			{Time: now.Add(-4 * time.Hour), Close: 96, Low: 94},
			{Time: now.Add(-2 * time.Hour), Close: 94, Low: 92},
		},
	}
	c := testCollector(fetcher, store, now)

	series, err := c.DailySeries(context.Background(), "BCE.TO")
	require.NoError(t, err)
	require.Len(t, series.Bars, 3)

	today := series.Bars[2]
	assert.InDelta(t, 95.0, today.Close, 1e-9, "today's close is the mean of intraday closes")
	assert.InDelta(t, 92.0, today.Low, 1e-9, "today's low is the minimum of intraday lows")
}

func TestDailySeries_OverwritesExistingTodayBar(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.lastUpdate, store.hasUpdate = now, true
	store.bars[key("BCE.TO", model.IntervalDaily)] = []model.Bar{
		{Time: now.AddDate(0, 0, -1), Close: 102, Low: 99},
		{Time: now.Add(-6 * time.Hour), Close: 101, Low: 100},
	}
	fetcher := &MockFetcher{
		Price:        95,
		IntradayData: []model.Bar{{Time: now.Add(-time.Hour), Close: 94, Low: 92}},
	}
	c := testCollector(fetcher, store, now)

	series, err := c.DailySeries(context.Background(), "BCE.TO")
	require.NoError(t, err)
	require.Len(t, series.Bars, 2)
	assert.InDelta(t, 94.0, series.Bars[1].Close, 1e-9)
	assert.InDelta(t, 92.0, series.Bars[1].Low, 1e-9)
}

func TestCurrentPrice_FallsBackToCachedClose(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.lastUpdate, store.hasUpdate = now, true
	store.bars[key("BCE.TO", model.IntervalDaily)] = []model.Bar{
		{Time: now.AddDate(0, 0, -1), Close: 102, Low: 99},
	}
	c := testCollector(&failingFetcher{}, store, now)

	price, err := c.CurrentPrice(context.Background(), "BCE.TO")
	require.NoError(t, err)
	assert.Equal(t, 102.0, price)
}

func TestCurrentPrice_NoSourceAtAll(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.lastUpdate, store.hasUpdate = now, true
	c := testCollector(&failingFetcher{}, store, now)

	_, err := c.CurrentPrice(context.Background(), "BCE.TO")
	assert.ErrorIs(t, err, ErrNoPrice)
}

type failingFetcher struct{}

func (f *failingFetcher) Name() string { return "failing" }

func (f *failingFetcher) FetchDailyBars(context.Context, string, int) ([]model.Bar, error) {
	return nil, errors.New("unreachable")
}

func (f *failingFetcher) FetchIntradayBars(context.Context, string, int) ([]model.Bar, error) {
	return nil, errors.New("unreachable")
}

func (f *failingFetcher) FetchCurrentPrice(context.Context, string) (float64, error) {
	return 0, errors.New("unreachable")
}

func TestMergeToday(t *testing.T) {
	todayStart := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	cached := []model.Bar{
		{Time: todayStart.Add(2 * time.Hour), Close: 10},
		{Time: todayStart.Add(3 * time.Hour), Close: 11},
	}
	fresh := []model.Bar{
		{Time: todayStart.Add(3 * time.Hour), Close: 12}, // collision, fresh wins
		{Time: todayStart.Add(4 * time.Hour), Close: 13},
		{Time: todayStart.Add(-time.Hour), Close: 9}, // yesterday, dropped
	}

	merged := mergeToday(cached, fresh, todayStart)
	require.Len(t, merged, 3)
	assert.Equal(t, 10.0, merged[0].Close)
	assert.Equal(t, 12.0, merged[1].Close)
	assert.Equal(t, 13.0, merged[2].Close)
}
