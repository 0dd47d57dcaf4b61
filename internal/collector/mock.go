package collector

import (
	"context"
	"time"

	"TickerSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price        float64
	DailyData    []model.Bar
	IntradayData []model.Bar
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.Bar, error) {
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return GenerateBars(m.Price, days, 24*time.Hour), nil
}

func (m *MockFetcher) FetchIntradayBars(_ context.Context, _ string, days int) ([]model.Bar, error) {
	if m.IntradayData != nil {
		return m.IntradayData, nil
	}
	return GenerateBars(m.Price, days*78, 5*time.Minute), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, _ string) (float64, error) {
	return m.Price, nil
}

// GenerateBars builds a gently drifting series ending now, spaced by step.
func GenerateBars(basePrice float64, count int, step time.Duration) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   time.Now().UTC().Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
