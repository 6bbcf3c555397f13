// Package pressure derives order-book pressure metrics from snapshots.
package pressure

import "github.com/hawkline/depthwatch/internal/domain"

// Compute derives the imbalance ratio and spread for a snapshot. It must only
// be called on validated snapshots; levels are assumed pre-sorted best-first.
func Compute(snap domain.Snapshot) domain.Metrics {
	var bidVol, askVol float64
	for _, l := range snap.Bids {
		bidVol += l.Quantity
	}
	for _, l := range snap.Asks {
		askVol += l.Quantity
	}

	var imbalance float64
	if total := bidVol + askVol; total > 0 {
		imbalance = (bidVol - askVol) / total
	}

	return domain.Metrics{
		BidVol:    bidVol,
		AskVol:    askVol,
		Imbalance: imbalance,
		Spread:    snap.BestAsk() - snap.BestBid(),
	}
}

// Record builds the persisted form of a validated snapshot from its metrics.
func Record(snap domain.Snapshot, m domain.Metrics) domain.PressureRecord {
	return domain.PressureRecord{
		Symbol:     snap.Symbol,
		Timestamp:  snap.Timestamp,
		BidVolTop5: m.BidVol,
		AskVolTop5: m.AskVol,
		BestBid:    snap.BestBid(),
		BestAsk:    snap.BestAsk(),
	}
}
