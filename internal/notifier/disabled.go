package notifier

import (
	"context"

	"github.com/rs/zerolog/log"

	"TickerSentinel/internal/model"
	"TickerSentinel/internal/strategy"
)

// Disabled is the notifier used when email delivery is turned off. It
// logs what would have been sent and reports no delivery, so executions
// stay unnotified and their pairs remain eligible on later runs.
type Disabled struct{}

// NewDisabled creates a Disabled notifier.
func NewDisabled() *Disabled { return &Disabled{} }

func (d *Disabled) SendDaily(ctx context.Context, rows []model.BucketRow, fresh []model.TickerSignal) (*strategy.Delivery, error) {
	log.Info().Int("rows", len(rows)).Int("new", len(fresh)).Msg("email disabled, skipping daily report")
	return nil, nil
}

func (d *Disabled) SendWeekly(ctx context.Context, rows []model.TickerSignal) (*strategy.Delivery, error) {
	log.Info().Int("rows", len(rows)).Msg("email disabled, skipping weekly report")
	return nil, nil
}
