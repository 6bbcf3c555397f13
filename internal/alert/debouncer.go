// Package alert guards the notifier with a threshold+cooldown state machine
// so a sustained imbalance surfaces once per cooldown window instead of once
// per tick.
package alert

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/hawkline/depthwatch/internal/domain"
)

// Debouncer tracks the last successful alert and suppresses re-notification
// inside the cooldown window. Its state is private to the ingestion process,
// never persisted, and resets to idle on restart.
type Debouncer struct {
	threshold float64
	cooldown  time.Duration
	notifier  domain.Notifier
	logger    *slog.Logger

	// lastAlert is the zero time until the first successful delivery, so a
	// fresh process treats the cooldown as long expired.
	lastAlert time.Time
	now       func() time.Time
}

// NewDebouncer creates a Debouncer in the idle state. threshold is compared
// against the absolute imbalance ratio; the comparison is strict, so a value
// exactly at the threshold does not trigger.
func NewDebouncer(threshold float64, cooldown time.Duration, notifier domain.Notifier, logger *slog.Logger) *Debouncer {
	return &Debouncer{
		threshold: threshold,
		cooldown:  cooldown,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "debouncer")),
		now:       time.Now,
	}
}

// Evaluate runs one tick of the state machine after a record has been
// persisted. It returns the fired alert, or nil when the threshold was not
// breached, the cooldown is still running, or delivery failed. A failed
// delivery leaves the cooldown untouched so the next tick retries
// immediately while the condition holds.
func (d *Debouncer) Evaluate(ctx context.Context, symbol string, m domain.Metrics, bestBid float64) *domain.Alert {
	if math.Abs(m.Imbalance) <= d.threshold {
		return nil
	}

	now := d.now()
	elapsed := now.Sub(d.lastAlert)
	if elapsed <= d.cooldown {
		d.logger.InfoContext(ctx, "alert suppressed, cooling down",
			slog.String("symbol", symbol),
			slog.Float64("imbalance", m.Imbalance),
			slog.Duration("remaining", d.cooldown-elapsed),
		)
		return nil
	}

	a := domain.Alert{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Imbalance: m.Imbalance,
		BestBid:   bestBid,
		FiredAt:   now,
	}
	if !d.notifier.Send(ctx, a) {
		d.logger.ErrorContext(ctx, "alert delivery failed, will retry next tick",
			slog.String("symbol", symbol),
			slog.String("alert_id", a.ID),
		)
		return nil
	}

	d.lastAlert = now
	d.logger.InfoContext(ctx, "alert fired",
		slog.String("symbol", symbol),
		slog.String("alert_id", a.ID),
		slog.Float64("imbalance", m.Imbalance),
		slog.Float64("best_bid", bestBid),
	)
	return &a
}
