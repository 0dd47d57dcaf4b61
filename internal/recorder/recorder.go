package recorder

import (
	"time"

	"TickerSentinel/internal/model"
)

// Recorder persists raw bars, execution audit records, the daily
// freshness marker, the recipient list, and the email log.
type Recorder interface {
	// Bar cache.
	UpsertBars(ticker, interval string, bars []model.Bar) (int, error)
	LoadBars(ticker, interval string, since time.Time) ([]model.Bar, error)

	// Daily refresh marker. The bool is false when no refresh has been
	// recorded yet.
	LastUpdate() (time.Time, bool, error)
	SetLastUpdate(t time.Time) error

	// Execution audit trail and dedup query.
	SaveExecution(exec *model.Execution) error
	TodayNotifiedPairs(start, end time.Time) (map[model.ReportedPair]struct{}, error)

	// Notification bookkeeping.
	Recipients() ([]string, error)
	AddRecipients(emails []string) error
	LogEmail(executionID, subject string, recipients []string, rowCount int) error

	Close() error
}
