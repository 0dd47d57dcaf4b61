package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TickerSentinel/internal/collector"
	"TickerSentinel/internal/config"
	"TickerSentinel/internal/notifier"
	"TickerSentinel/internal/recorder"
	"TickerSentinel/internal/scheduler"
	"TickerSentinel/internal/strategy"
)

func main() {
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	setupLogging(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("TickerSentinel starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("resolve timezone")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	if len(cfg.Email.Recipients) > 0 {
		if err := rec.AddRecipients(cfg.Email.Recipients); err != nil {
			log.Warn().Err(err).Msg("seed recipient list")
		}
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")

	// Init collector
	col := collector.NewCollector(fetcher, rec, collector.Config{
		Tickers:      cfg.Tickers,
		Location:     loc,
		HistoryDays:  cfg.Windows.HistoryDays,
		IntradayDays: cfg.Windows.IntradayDays,
	})

	// Init notifier
	var notif strategy.Notifier
	if cfg.Email.Enabled {
		notif = notifier.NewEmailNotifier(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.Username, cfg.Email.Password,
			cfg.Email.From, cfg.Email.SubjectPrefix,
			rec, cfg.Email.Recipients, loc,
		)
	} else {
		notif = notifier.NewDisabled()
	}

	// Init engine
	engine := strategy.New(strategy.Config{
		Tickers:   cfg.Tickers,
		Location:  loc,
		ShortDays: cfg.Windows.ShortDays,
		LongDays:  cfg.Windows.LongDays,
		WeekSpans: cfg.Windows.WeekSpans,
	}, col, rec, notif)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, engine)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.WeeklyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	switch strings.ToLower(os.Getenv("RUN_ON_START")) {
	case "daily":
		log.Info().Msg("RUN_ON_START enabled, executing daily task now")
		go sched.RunDailyNow()
	case "weekly", "true":
		log.Info().Msg("RUN_ON_START enabled, executing weekly task now")
		go sched.RunWeeklyNow()
	}

	log.Info().Msg("TickerSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	log.Info().Msg("TickerSentinel stopped")
}

func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
