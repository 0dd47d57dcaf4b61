package recorder

import (
	"time"

	"TickerSentinel/internal/model"
)

// NoopRecorder is used when no SQLite path is configured. Runs still
// work but nothing is cached, deduped, or audited.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) UpsertBars(_, _ string, bars []model.Bar) (int, error) { return len(bars), nil }
func (n *NoopRecorder) LoadBars(_, _ string, _ time.Time) ([]model.Bar, error) {
	return nil, nil
}
func (n *NoopRecorder) LastUpdate() (time.Time, bool, error) { return time.Time{}, false, nil }
func (n *NoopRecorder) SetLastUpdate(_ time.Time) error      { return nil }
func (n *NoopRecorder) SaveExecution(_ *model.Execution) error {
	return nil
}
func (n *NoopRecorder) TodayNotifiedPairs(_, _ time.Time) (map[model.ReportedPair]struct{}, error) {
	return map[model.ReportedPair]struct{}{}, nil
}
func (n *NoopRecorder) Recipients() ([]string, error)  { return nil, nil }
func (n *NoopRecorder) AddRecipients(_ []string) error { return nil }
func (n *NoopRecorder) LogEmail(_, _ string, _ []string, _ int) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
