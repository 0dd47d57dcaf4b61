package collector

import (
	"context"

	"TickerSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, ticker string, days int) ([]model.Bar, error)
	FetchIntradayBars(ctx context.Context, ticker string, days int) ([]model.Bar, error)
	FetchCurrentPrice(ctx context.Context, ticker string) (float64, error)
	Name() string
}
