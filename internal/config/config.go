package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is immutable after
// Load and passed into constructors, never read globally.
type Config struct {
	Tickers  []string `yaml:"tickers"`
	Timezone string   `yaml:"timezone"`

	Windows struct {
		HistoryDays  int `yaml:"history_days"`
		IntradayDays int `yaml:"intraday_days"`
		ShortDays    int `yaml:"short_days"`
		LongDays     int `yaml:"long_days"`
		WeekSpans    int `yaml:"week_spans"`
	} `yaml:"windows"`

	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`

	Schedule struct {
		DailyCron  string `yaml:"daily_cron"`
		WeeklyCron string `yaml:"weekly_cron"`
	} `yaml:"schedule"`

	Email struct {
		Enabled       bool     `yaml:"enabled"`
		SMTPHost      string   `yaml:"smtp_host"`
		SMTPPort      int      `yaml:"smtp_port"`
		Username      string   `yaml:"username"`
		Password      string   `yaml:"password"`
		From          string   `yaml:"from"`
		SubjectPrefix string   `yaml:"subject_prefix"`
		Recipients    []string `yaml:"recipients"`
	} `yaml:"email"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Proxy string `yaml:"proxy"`
}

// defaultTickers is the TSX watchlist used when nothing is configured.
var defaultTickers = []string{
	"BCE.TO", "BNS.TO", "CM.TO", "CSH-UN.TO", "ENB.TO",
	"FIE.TO", "POW.TO", "SGR-UN.TO", "SRU-UN.TO", "T.TO", "TD.TO", "FTS.TO",
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TICKERS"); v != "" {
		cfg.Tickers = ParseTickers(v)
	}
	if v := os.Getenv("TZ"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = p
		}
	}
	if v := os.Getenv("EMAIL_USER"); v != "" {
		cfg.Email.Username = v
	}
	if v := os.Getenv("EMAIL_PASS"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("EMAIL_TO"); v != "" {
		cfg.Email.Recipients = splitList(v)
	}
	if v := os.Getenv("EMAIL_SUBJECT"); v != "" {
		cfg.Email.SubjectPrefix = v
	}
	if v := os.Getenv("EMAIL_ENABLED"); v != "" {
		cfg.Email.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("CRON_WEEKLY"); v != "" {
		cfg.Schedule.WeeklyCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = append([]string(nil), defaultTickers...)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Toronto"
	}
	if cfg.Windows.HistoryDays == 0 {
		cfg.Windows.HistoryDays = 180
	}
	if cfg.Windows.IntradayDays == 0 {
		cfg.Windows.IntradayDays = 60
	}
	if cfg.Windows.ShortDays == 0 {
		cfg.Windows.ShortDays = 30
	}
	if cfg.Windows.LongDays == 0 {
		cfg.Windows.LongDays = 90
	}
	if cfg.Windows.WeekSpans == 0 {
		cfg.Windows.WeekSpans = 14
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 16 * * 1-5"
	}
	if cfg.Schedule.WeeklyCron == "" {
		cfg.Schedule.WeeklyCron = "0 0 10-16 * * 1-5"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.SubjectPrefix == "" {
		cfg.Email.SubjectPrefix = "Favorable stocks to invest on "
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/ticker_sentinel.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("tickers must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if c.Windows.ShortDays <= 0 || c.Windows.LongDays <= 0 {
		return fmt.Errorf("window lengths must be positive")
	}
	if c.Windows.ShortDays >= c.Windows.LongDays {
		return fmt.Errorf("windows.short_days must be smaller than windows.long_days")
	}
	if c.Windows.WeekSpans < 1 {
		return fmt.Errorf("windows.week_spans must be at least 1")
	}
	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("email.smtp_host is required when email is enabled")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email.from is required when email is enabled")
		}
	}
	return nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

var tickerSep = regexp.MustCompile(`[,\s]+`)

// splitList splits a comma/whitespace separated list, preserving case.
func splitList(s string) []string {
	var out []string
	for _, p := range tickerSep.Split(strings.TrimSpace(s), -1) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseTickers accepts either a JSON array ("[\"BCE.TO\",\"BNS.TO\"]")
// or a comma/whitespace separated list, upper-cases the entries, and
// de-duplicates while preserving order.
func ParseTickers(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var parts []string
	if strings.HasPrefix(s, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			parts = arr
		}
	}
	if parts == nil {
		parts = tickerSep.Split(s, -1)
	}

	seen := map[string]struct{}{}
	var out []string
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
