package model

// Window identifies one lookback span by label and depth.
// Depth 0 is the current week; larger depths reach further back.
// Daily trailing-sample windows use depth 0 and are distinguished by label.
type Window struct {
	Label string
	Depth int
}

// WindowStats holds the statistics of a price series restricted to one
// window: the mean of closes and the minimum of lows.
type WindowStats struct {
	Average float64
	Minimum float64
}

// Gap is the spread between average close and minimum low. A gap <= 0
// marks a degenerate (flat or inverted) window.
func (s WindowStats) Gap() float64 { return s.Average - s.Minimum }
