package strategy

import "TickerSentinel/internal/model"

// DepthResolver implements the weekly strategy: windows are scanned
// deepest lookback first and the ticker is assigned to the first window
// whose minimum its current price undercuts. Breaching a 14-week minimum
// is a rarer signal than breaching this week's, so the deepest
// qualifying window wins. Windows without stats (ticker too new) are
// skipped without ending the scan.
type DepthResolver struct {
	Windows []model.Window
}

// NewDepthResolver builds a resolver over week windows up to maxSpan deep.
func NewDepthResolver(maxSpan int) *DepthResolver {
	return &DepthResolver{Windows: WeekWindows(maxSpan)}
}

func (r *DepthResolver) Classify(ticker string, current float64, stats map[string]model.WindowStats) (model.TickerSignal, bool) {
	for _, w := range r.Windows {
		s, ok := stats[w.Label]
		if !ok {
			continue
		}
		if current < s.Minimum {
			return model.TickerSignal{
				Ticker:       ticker,
				WindowLabel:  w.Label,
				CurrentPrice: current,
				CompareValue: s.Minimum,
			}, true
		}
	}
	return model.TickerSignal{}, false
}
