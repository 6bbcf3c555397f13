// Package quality gates snapshots before persistence: structural completeness
// checks plus the crossed-market business rule.
package quality

import (
	"log/slog"

	"github.com/hawkline/depthwatch/internal/domain"
)

// Validator is a pure predicate over one snapshot. It performs no retries and
// has no side effects beyond diagnostic logging.
type Validator struct {
	// spreadThreshold is the minimum spread a snapshot must exceed. A
	// snapshot with bestAsk - bestBid <= spreadThreshold is rejected as a
	// crossed or locked book. Default 0.
	spreadThreshold float64
	logger          *slog.Logger
}

// New creates a Validator with the given spread threshold.
func New(spreadThreshold float64, logger *slog.Logger) *Validator {
	return &Validator{
		spreadThreshold: spreadThreshold,
		logger:          logger.With(slog.String("component", "validator")),
	}
}

// Validate reports whether the snapshot is fit for persistence. A nil
// snapshot, missing required fields, an empty bid or ask side, or a crossed/
// locked book all fail validation.
func (v *Validator) Validate(snap *domain.Snapshot) bool {
	if snap == nil {
		v.logger.Warn("snapshot is nil")
		return false
	}
	if snap.Symbol == "" || snap.Timestamp.IsZero() {
		v.logger.Error("snapshot missing required fields",
			slog.String("symbol", snap.Symbol),
			slog.Time("timestamp", snap.Timestamp),
		)
		return false
	}
	if len(snap.Bids) == 0 || len(snap.Asks) == 0 {
		v.logger.Warn("order book side empty",
			slog.String("symbol", snap.Symbol),
			slog.Int("bids", len(snap.Bids)),
			slog.Int("asks", len(snap.Asks)),
		)
		return false
	}
	return v.checkCrossed(snap)
}

// checkCrossed rejects books where the best bid meets or exceeds the best
// ask. A non-positive spread indicates data corruption or a fleeting crossed-
// market artifact and must never reach the store.
func (v *Validator) checkCrossed(snap *domain.Snapshot) bool {
	spread := snap.BestAsk() - snap.BestBid()
	if spread <= v.spreadThreshold {
		v.logger.Error("crossed or locked book rejected",
			slog.String("symbol", snap.Symbol),
			slog.Float64("best_bid", snap.BestBid()),
			slog.Float64("best_ask", snap.BestAsk()),
			slog.Float64("spread", spread),
		)
		return false
	}
	return true
}
