package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies DEPTHWATCH_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known DEPTHWATCH_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject credentials at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Venue ──
	setStr(&cfg.Venue.ID, "DEPTHWATCH_VENUE_ID")
	setStr(&cfg.Venue.Symbol, "DEPTHWATCH_VENUE_SYMBOL")
	setInt(&cfg.Venue.TimeoutSeconds, "DEPTHWATCH_VENUE_TIMEOUT_SECONDS")
	setInt64(&cfg.Venue.SimSeed, "DEPTHWATCH_VENUE_SIM_SEED")

	// ── Store ──
	setStr(&cfg.Store.Path, "DEPTHWATCH_STORE_PATH")

	// ── Quality ──
	setFloat64(&cfg.Quality.SpreadThreshold, "DEPTHWATCH_QUALITY_SPREAD_THRESHOLD")

	// ── Alert ──
	setFloat64(&cfg.Alert.Threshold, "DEPTHWATCH_ALERT_THRESHOLD")
	setInt(&cfg.Alert.CooldownSeconds, "DEPTHWATCH_ALERT_COOLDOWN_SECONDS")

	// ── Ingest ──
	setInt(&cfg.Ingest.IntervalSeconds, "DEPTHWATCH_INGEST_INTERVAL_SECONDS")

	// ── Query ──
	setInt(&cfg.Query.IntervalSeconds, "DEPTHWATCH_QUERY_INTERVAL_SECONDS")
	setStr(&cfg.Query.Lookback, "DEPTHWATCH_QUERY_LOOKBACK")
	setInt(&cfg.Query.ConsoleMaxRows, "DEPTHWATCH_QUERY_CONSOLE_MAX_ROWS")

	// ── Notify ──
	setStr(&cfg.Notify.SMTP.Host, "DEPTHWATCH_NOTIFY_SMTP_HOST")
	setInt(&cfg.Notify.SMTP.Port, "DEPTHWATCH_NOTIFY_SMTP_PORT")
	setStr(&cfg.Notify.SMTP.Username, "DEPTHWATCH_NOTIFY_SMTP_USERNAME")
	setStr(&cfg.Notify.SMTP.Password, "DEPTHWATCH_NOTIFY_SMTP_PASSWORD")
	setStr(&cfg.Notify.SMTP.From, "DEPTHWATCH_NOTIFY_SMTP_FROM")
	setStringSlice(&cfg.Notify.SMTP.To, "DEPTHWATCH_NOTIFY_SMTP_TO")
	setBool(&cfg.Notify.SMTP.UseSSL, "DEPTHWATCH_NOTIFY_SMTP_USE_SSL")
	setStr(&cfg.Notify.TelegramToken, "DEPTHWATCH_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "DEPTHWATCH_NOTIFY_TELEGRAM_CHAT_ID")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "DEPTHWATCH_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "DEPTHWATCH_SERVER_PORT")

	// ── Top-level ──
	setStr(&cfg.Mode, "DEPTHWATCH_MODE")
	setStr(&cfg.LogLevel, "DEPTHWATCH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
