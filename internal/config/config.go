// Package config defines the top-level configuration for depthwatch and
// provides validation helpers.
package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by DEPTHWATCH_* environment variables.
type Config struct {
	Venue    VenueConfig   `toml:"venue"`
	Store    StoreConfig   `toml:"store"`
	Quality  QualityConfig `toml:"quality"`
	Alert    AlertConfig   `toml:"alert"`
	Ingest   IngestConfig  `toml:"ingest"`
	Query    QueryConfig   `toml:"query"`
	Notify   NotifyConfig  `toml:"notify"`
	Server   ServerConfig  `toml:"server"`
	Mode     string        `toml:"mode"`
	LogLevel string        `toml:"log_level"`
}

// VenueConfig selects the exchange the writer samples depth from.
type VenueConfig struct {
	ID             string `toml:"id"`
	Symbol         string `toml:"symbol"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SimSeed        int64  `toml:"sim_seed"`
}

// StoreConfig holds the shared snapshot store location.
type StoreConfig struct {
	Path string `toml:"path"`
}

// QualityConfig holds the snapshot validation parameters.
type QualityConfig struct {
	// SpreadThreshold rejects any book whose best_ask - best_bid is <= this
	// value. The default of 0 rejects crossed and locked books.
	SpreadThreshold float64 `toml:"spread_threshold"`
}

// AlertConfig holds the imbalance alert parameters.
type AlertConfig struct {
	Threshold       float64 `toml:"threshold"`
	CooldownSeconds int     `toml:"cooldown_seconds"`
}

// IngestConfig holds the writer-side sampling parameters.
type IngestConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// QueryConfig holds the reader-side polling parameters.
type QueryConfig struct {
	IntervalSeconds int    `toml:"interval_seconds"`
	Lookback        string `toml:"lookback"`
	ConsoleMaxRows  int    `toml:"console_max_rows"`
}

// NotifyConfig holds notification channel credentials. A channel is active
// only when its primary credential (smtp.host, telegram_token) is non-empty.
type NotifyConfig struct {
	SMTP           SMTPConfig `toml:"smtp"`
	TelegramToken  string     `toml:"telegram_token"`
	TelegramChatID string     `toml:"telegram_chat_id"`
}

// SMTPConfig holds SMTP server credentials for email alerts.
type SMTPConfig struct {
	Host     string   `toml:"host"`
	Port     int      `toml:"port"`
	Username string   `toml:"username"`
	Password string   `toml:"password"`
	From     string   `toml:"from"`
	To       []string `toml:"to"`
	UseSSL   bool     `toml:"use_ssl"`
}

// ServerConfig holds the dashboard HTTP server parameters.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Venue: VenueConfig{
			ID:             "bybit",
			Symbol:         "BTC/USDT",
			TimeoutSeconds: 10,
			SimSeed:        1,
		},
		Store: StoreConfig{
			Path: "data/market_data.db",
		},
		Quality: QualityConfig{
			SpreadThreshold: 0,
		},
		Alert: AlertConfig{
			Threshold:       0.8,
			CooldownSeconds: 300,
		},
		Ingest: IngestConfig{
			IntervalSeconds: 1,
		},
		Query: QueryConfig{
			IntervalSeconds: 1,
			Lookback:        "medium",
			ConsoleMaxRows:  10,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8000,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"ingest":    true,
	"dashboard": true,
	"full":      true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// lookbackRows maps the named lookback windows to row counts: at a 1s sample
// cadence these correspond to one minute, five minutes, and one hour.
var lookbackRows = map[string]int{
	"small":  60,
	"medium": 300,
	"large":  3600,
}

// SlogLevel maps the configured log level to its slog value,
// case-insensitively. Unknown values fall back to info; Validate rejects them
// before this is consulted.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LimitRows returns the number of rows the named lookback window covers.
// Validate guarantees the name is known.
func (q QueryConfig) LimitRows() int {
	return lookbackRows[strings.ToLower(q.Lookback)]
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: ingest, dashboard, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Venue
	if c.Venue.ID == "" {
		errs = append(errs, "venue: id must not be empty")
	}
	if c.Venue.Symbol == "" {
		errs = append(errs, "venue: symbol must not be empty")
	}
	if c.Venue.TimeoutSeconds < 1 {
		errs = append(errs, "venue: timeout_seconds must be >= 1")
	}

	// Store
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = append(errs, "store: path must not be empty")
	}

	// Quality
	if c.Quality.SpreadThreshold < 0 {
		errs = append(errs, "quality: spread_threshold must be >= 0")
	}

	// Alert
	if c.Alert.Threshold <= 0 || c.Alert.Threshold >= 1 {
		errs = append(errs, fmt.Sprintf("alert: threshold must be in (0, 1), got %g", c.Alert.Threshold))
	}
	if c.Alert.CooldownSeconds < 0 {
		errs = append(errs, "alert: cooldown_seconds must be >= 0")
	}

	// Ingest
	if c.Ingest.IntervalSeconds < 1 {
		errs = append(errs, "ingest: interval_seconds must be >= 1")
	}

	// Query
	if c.Query.IntervalSeconds < 1 || c.Query.IntervalSeconds > 10 {
		errs = append(errs, fmt.Sprintf("query: interval_seconds must be 1-10, got %d", c.Query.IntervalSeconds))
	}
	if _, ok := lookbackRows[strings.ToLower(c.Query.Lookback)]; !ok {
		errs = append(errs, fmt.Sprintf("query: unknown lookback %q (valid: small, medium, large)", c.Query.Lookback))
	}
	if c.Query.ConsoleMaxRows < 1 {
		errs = append(errs, "query: console_max_rows must be >= 1")
	}

	// Notify — SMTP fields must come as a complete set when the channel is on.
	if c.Notify.SMTP.Host != "" {
		if c.Notify.SMTP.Port <= 0 || c.Notify.SMTP.Port > 65535 {
			errs = append(errs, fmt.Sprintf("notify: smtp.port must be 1-65535, got %d", c.Notify.SMTP.Port))
		}
		if c.Notify.SMTP.From == "" {
			errs = append(errs, "notify: smtp.from must not be empty when smtp.host is set")
		}
		if len(c.Notify.SMTP.To) == 0 {
			errs = append(errs, "notify: smtp.to must list at least one recipient when smtp.host is set")
		}
	}
	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
