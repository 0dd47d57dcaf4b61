package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TickerSentinel/internal/strategy"
)

// Scheduler drives the engine's two run modes on cron schedules.
type Scheduler struct {
	Cron   *cron.Cron
	Engine *strategy.Engine
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, engine *strategy.Engine) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Engine: engine,
		Ctx:    ctx,
	}
}

// RegisterAll registers the daily bucket task and the weekly window scan.
func (s *Scheduler) RegisterAll(dailyCron, weeklyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(weeklyCron, s.weeklyTask); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunDailyNow executes the daily task immediately (manual trigger /
// RUN_ON_START).
func (s *Scheduler) RunDailyNow() { s.dailyTask() }

// RunWeeklyNow executes the weekly task immediately.
func (s *Scheduler) RunWeeklyNow() { s.weeklyTask() }

func (s *Scheduler) dailyTask() {
	log.Info().Msg("running daily bucket task")
	res, err := s.Engine.RunDaily(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("daily run failed")
		return
	}
	log.Info().Str("execution", res.ExecutionID).Str("result", res.String()).Msg("daily run finished")
}

func (s *Scheduler) weeklyTask() {
	log.Info().Msg("running weekly window scan")
	res, err := s.Engine.RunWeekly(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("weekly run failed")
		return
	}
	log.Info().Str("execution", res.ExecutionID).Str("result", res.String()).Msg("weekly run finished")
}
