package strategy

import "TickerSentinel/internal/model"

// Classifier assigns at most one signal to a ticker from its per-window
// statistics. The second return is false when no window qualifies.
type Classifier interface {
	Classify(ticker string, current float64, stats map[string]model.WindowStats) (model.TickerSignal, bool)
}

// Daily window labels used by the bucket classifier's stats map.
const (
	ShortWindowLabel = "30d"
	LongWindowLabel  = "90d"
)

type tierKind int

const (
	belowMinimum tierKind = iota
	belowGapFraction
	belowAverage
)

type bucketTier struct {
	Amount int
	Label  string
	kind   tierKind
	frac   float64
	long   bool
}

// BucketTiers is the ordered amount-bucket table. Evaluation is strict
// less-than, first match wins; the nesting of the bounds makes ties
// impossible. Gap tiers are skipped for a window whose gap is <= 0.
var BucketTiers = []bucketTier{
	{Amount: 800, Label: "Below 90d min", kind: belowMinimum, long: true},
	{Amount: 600, Label: "Below 30d min", kind: belowMinimum},
	{Amount: 700, Label: "Below 80% gap (90d)", kind: belowGapFraction, frac: 0.8, long: true},
	{Amount: 500, Label: "Below 80% gap (30d)", kind: belowGapFraction, frac: 0.8},
	{Amount: 500, Label: "Below 50% gap (90d)", kind: belowGapFraction, frac: 0.5, long: true},
	{Amount: 400, Label: "Below 50% gap (30d)", kind: belowGapFraction, frac: 0.5},
	{Amount: 200, Label: "Below 90d avg", kind: belowAverage, long: true},
	{Amount: 100, Label: "Below 30d avg", kind: belowAverage},
}

// NoSignalLabel marks the zero-amount bucket in reports.
const NoSignalLabel = "No signal"

// GapThreshold returns average - frac*(average - minimum), the price
// bound for a percentage-gap tier.
func GapThreshold(s model.WindowStats, frac float64) float64 {
	return s.Average - frac*s.Gap()
}

// BucketClassifier implements the fixed short/long amount-bucket scheme
// used by the daily run. Both windows must be present in the stats map.
type BucketClassifier struct {
	ShortLabel string
	LongLabel  string
}

// NewBucketClassifier returns a classifier over the default 30d/90d pair.
func NewBucketClassifier() *BucketClassifier {
	return &BucketClassifier{ShortLabel: ShortWindowLabel, LongLabel: LongWindowLabel}
}

func (c *BucketClassifier) Classify(ticker string, current float64, stats map[string]model.WindowStats) (model.TickerSignal, bool) {
	short, okShort := stats[c.ShortLabel]
	long, okLong := stats[c.LongLabel]
	if !okShort || !okLong {
		return model.TickerSignal{}, false
	}

	for _, tier := range BucketTiers {
		s := short
		if tier.long {
			s = long
		}
		var bound float64
		switch tier.kind {
		case belowMinimum:
			bound = s.Minimum
		case belowGapFraction:
			if s.Gap() <= 0 {
				continue
			}
			bound = GapThreshold(s, tier.frac)
		case belowAverage:
			bound = s.Average
		}
		if current < bound {
			return model.TickerSignal{
				Ticker:       ticker,
				WindowLabel:  tier.Label,
				CurrentPrice: current,
				CompareValue: bound,
				Amount:       tier.Amount,
			}, true
		}
	}
	return model.TickerSignal{}, false
}
