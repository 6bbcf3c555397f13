// Package pipeline contains the two long-running loops of the system: the
// writer-side ingestion loop and the reader-side query loop. The loops never
// talk to each other directly; the shared store file is their only channel.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hawkline/depthwatch/internal/alert"
	"github.com/hawkline/depthwatch/internal/domain"
	"github.com/hawkline/depthwatch/internal/pressure"
	"github.com/hawkline/depthwatch/internal/quality"
)

// Ingestor runs the writer process loop: fetch one snapshot, validate it,
// append the derived record, and evaluate the alert debouncer, once per tick.
type Ingestor struct {
	venue     domain.VenueClient
	symbol    string
	validator *quality.Validator
	store     domain.SnapshotStore
	debouncer *alert.Debouncer
	interval  time.Duration
	logger    *slog.Logger
}

// NewIngestor creates an Ingestor polling venue for symbol every interval.
func NewIngestor(
	venue domain.VenueClient,
	symbol string,
	validator *quality.Validator,
	store domain.SnapshotStore,
	debouncer *alert.Debouncer,
	interval time.Duration,
	logger *slog.Logger,
) *Ingestor {
	return &Ingestor{
		venue:     venue,
		symbol:    symbol,
		validator: validator,
		store:     store,
		debouncer: debouncer,
		interval:  interval,
		logger:    logger.With(slog.String("component", "ingest")),
	}
}

// Run ticks immediately, then on every interval until the context is
// cancelled. Per-tick failures (fetch, validation, lock contention) are
// logged and skipped; the loop only terminates with the context.
func (i *Ingestor) Run(ctx context.Context) error {
	i.logger.InfoContext(ctx, "ingestion loop starting",
		slog.String("venue", i.venue.Name()),
		slog.String("symbol", i.symbol),
		slog.Duration("interval", i.interval),
	)

	i.Tick(ctx)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			i.logger.InfoContext(ctx, "ingestion loop stopped")
			return ctx.Err()
		case <-ticker.C:
			i.Tick(ctx)
		}
	}
}

// Tick executes one fetch-validate-persist-alert cycle.
func (i *Ingestor) Tick(ctx context.Context) {
	snap, err := i.venue.FetchOrderBook(ctx, i.symbol)
	if err != nil {
		i.logger.WarnContext(ctx, "fetch failed, tick skipped",
			slog.String("venue", i.venue.Name()),
			slog.String("error", err.Error()),
		)
		return
	}

	if !i.validator.Validate(&snap) {
		// Diagnostics already logged by the validator.
		return
	}

	m := pressure.Compute(snap)
	rec := pressure.Record(snap, m)

	if err := i.store.Append(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrLockContention) {
			i.logger.WarnContext(ctx, "write lock contention, record dropped",
				slog.String("symbol", rec.Symbol),
			)
		} else {
			i.logger.ErrorContext(ctx, "append failed, record dropped",
				slog.String("symbol", rec.Symbol),
				slog.String("error", err.Error()),
			)
		}
		// Alerting only runs on persisted records.
		return
	}

	i.logger.DebugContext(ctx, "snapshot persisted",
		slog.String("symbol", rec.Symbol),
		slog.Float64("imbalance", m.Imbalance),
		slog.Float64("spread", m.Spread),
		slog.Int64("latency_ms", snap.LatencyMS),
	)

	i.debouncer.Evaluate(ctx, rec.Symbol, m, rec.BestBid)
}
