package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerSentinel/internal/model"
)

func dailyStats(short, long model.WindowStats) map[string]model.WindowStats {
	return map[string]model.WindowStats{
		ShortWindowLabel: short,
		LongWindowLabel:  long,
	}
}

func TestBucketClassifier_TierTable(t *testing.T) {
	// Nested bounds shared by most cases:
	//   90d: avg=100 min=80  -> 80% gap bound 84, 50% gap bound 90
	//   30d: avg=95  min=85  -> 80% gap bound 87, 50% gap bound 90
	long := model.WindowStats{Average: 100, Minimum: 80}
	short := model.WindowStats{Average: 95, Minimum: 85}

	tests := []struct {
		name   string
		price  float64
		amount int
		label  string
	}{
		{"below 90d min", 79.5, 800, "Below 90d min"},
		{"below 30d min", 84.5, 600, "Below 30d min"},
		{"below 80pct gap 30d", 86.5, 500, "Below 80% gap (30d)"},
		{"below 50pct gap 90d", 89.0, 500, "Below 50% gap (90d)"},
		{"below 90d avg", 97.0, 200, "Below 90d avg"},
	}
	c := NewBucketClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := c.Classify("BCE.TO", tt.price, dailyStats(short, long))
			require.True(t, ok)
			assert.Equal(t, tt.amount, sig.Amount)
			assert.Equal(t, tt.label, sig.WindowLabel)
			assert.Equal(t, "BCE.TO", sig.Ticker)
			assert.Equal(t, tt.price, sig.CurrentPrice)
		})
	}
}

func TestBucketClassifier_ShortAvgAboveLongAvg(t *testing.T) {
	// The 30d average tier only fires when the price sits between the two
	// averages, which needs the short average above the long one.
	short := model.WindowStats{Average: 105, Minimum: 85}
	long := model.WindowStats{Average: 100, Minimum: 80}
	c := NewBucketClassifier()

	sig, ok := c.Classify("POW.TO", 102, dailyStats(short, long))
	require.True(t, ok)
	assert.Equal(t, 100, sig.Amount)
	assert.Equal(t, "Below 30d avg", sig.WindowLabel)
}

func TestBucketClassifier_IdenticalWindows(t *testing.T) {
	// Both windows avg=100 min=80. Price 84 equals the 80% gap bound, so
	// the strict comparison rejects it and the 50% gap tier (bound 90)
	// catches it instead, deep window first.
	s := model.WindowStats{Average: 100, Minimum: 80}
	c := NewBucketClassifier()

	sig, ok := c.Classify("ENB.TO", 84, dailyStats(s, s))
	require.True(t, ok)
	assert.Equal(t, 500, sig.Amount)
	assert.Equal(t, "Below 50% gap (90d)", sig.WindowLabel)
	assert.InDelta(t, 90.0, sig.CompareValue, 1e-9)
}

func TestBucketClassifier_StrictBoundaries(t *testing.T) {
	s := model.WindowStats{Average: 100, Minimum: 80}
	c := NewBucketClassifier()

	// Exactly at the minimum is not below it.
	sig, ok := c.Classify("T.TO", 80, dailyStats(s, s))
	require.True(t, ok)
	assert.NotEqual(t, "Below 90d min", sig.WindowLabel)

	// Exactly at the average matches nothing.
	_, ok = c.Classify("T.TO", 100, dailyStats(s, s))
	assert.False(t, ok)
}

func TestBucketClassifier_NoSignalAboveAverage(t *testing.T) {
	s := model.WindowStats{Average: 100, Minimum: 80}
	c := NewBucketClassifier()
	_, ok := c.Classify("TD.TO", 101, dailyStats(s, s))
	assert.False(t, ok)
}

func TestBucketClassifier_DegenerateGap(t *testing.T) {
	// Flat series: minimum above average. Gap tiers must be skipped, not
	// evaluated against inverted bounds.
	s := model.WindowStats{Average: 100, Minimum: 100}
	c := NewBucketClassifier()

	sig, ok := c.Classify("FTS.TO", 99, dailyStats(s, s))
	require.True(t, ok)
	assert.Equal(t, "Below 90d min", sig.WindowLabel)

	// Minimum above average: still resolves via the min tier.
	inverted := model.WindowStats{Average: 100, Minimum: 105}
	sig, ok = c.Classify("FTS.TO", 102, dailyStats(inverted, inverted))
	require.True(t, ok)
	assert.Equal(t, "Below 90d min", sig.WindowLabel)
}

func TestBucketClassifier_MissingWindow(t *testing.T) {
	c := NewBucketClassifier()
	_, ok := c.Classify("CM.TO", 10, map[string]model.WindowStats{
		ShortWindowLabel: {Average: 100, Minimum: 80},
	})
	assert.False(t, ok)
}

func TestGapThreshold(t *testing.T) {
	s := model.WindowStats{Average: 100, Minimum: 80}
	assert.InDelta(t, 90.0, GapThreshold(s, 0.5), 1e-9)
	assert.InDelta(t, 84.0, GapThreshold(s, 0.8), 1e-9)
}
