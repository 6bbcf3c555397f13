package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hawkline/depthwatch/internal/alert"
	"github.com/hawkline/depthwatch/internal/config"
	"github.com/hawkline/depthwatch/internal/domain"
	"github.com/hawkline/depthwatch/internal/notify"
	"github.com/hawkline/depthwatch/internal/quality"
	"github.com/hawkline/depthwatch/internal/store/sqlite"
	"github.com/hawkline/depthwatch/internal/venue"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	Store     domain.SnapshotStore
	Venue     domain.VenueClient
	Validator *quality.Validator
	Debouncer *alert.Debouncer
	Notifier  *notify.Notifier
}

// writesSnapshots returns true for modes that run the depth sampler and
// therefore own the store schema.
func writesSnapshots(mode string) bool {
	switch mode {
	case "ingest", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}
	mode := strings.ToLower(cfg.Mode)

	// --- Snapshot store ---
	// The writer owns the schema; readers must tolerate the file not existing
	// yet, so they never create it here.
	deps.Store = sqlite.New(cfg.Store.Path, logger)
	if writesSnapshots(mode) {
		if dir := filepath.Dir(cfg.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: create store directory: %w", err)
			}
		}
		if err := deps.Store.InitSchema(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: init store schema: %w", err)
		}
	}

	// --- Venue client (writer modes only) ---
	if writesSnapshots(mode) {
		client, err := venue.New(cfg.Venue.ID, venue.Options{
			Timeout: time.Duration(cfg.Venue.TimeoutSeconds) * time.Second,
			SimSeed: cfg.Venue.SimSeed,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: venue: %w", err)
		}
		deps.Venue = client

		deps.Validator = quality.New(cfg.Quality.SpreadThreshold, logger)

		// --- Notifications ---
		var senders []notify.Sender
		if cfg.Notify.SMTP.Host != "" {
			senders = append(senders, notify.NewEmailSender(notify.EmailConfig{
				Host:     cfg.Notify.SMTP.Host,
				Port:     cfg.Notify.SMTP.Port,
				Username: cfg.Notify.SMTP.Username,
				Password: cfg.Notify.SMTP.Password,
				From:     cfg.Notify.SMTP.From,
				To:       cfg.Notify.SMTP.To,
				UseSSL:   cfg.Notify.SMTP.UseSSL,
			}))
		}
		if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
			senders = append(senders, notify.NewTelegramSender(
				cfg.Notify.TelegramToken,
				cfg.Notify.TelegramChatID,
			))
		}
		deps.Notifier = notify.NewNotifier(senders, logger)

		deps.Debouncer = alert.NewDebouncer(
			cfg.Alert.Threshold,
			time.Duration(cfg.Alert.CooldownSeconds)*time.Second,
			deps.Notifier,
			logger,
		)
	}

	return deps, cleanup, nil
}
