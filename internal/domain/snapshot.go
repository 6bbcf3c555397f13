// Package domain defines the core data types, collaborator interfaces, and
// sentinel errors shared across the depthwatch pipeline.
package domain

import "time"

// DepthLimit is the number of price levels per side that venue clients
// request and the store aggregates over.
const DepthLimit = 5

// PriceLevel is a single price+quantity entry on one side of the book.
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// Snapshot is one observed order-book state: top-of-book depth for a single
// symbol at a capture instant. Bids and asks are ordered best-first by the
// producing venue client and carry at most DepthLimit levels each. A Snapshot
// is immutable once produced.
type Snapshot struct {
	Venue     string
	Symbol    string
	Timestamp time.Time
	Bids      []PriceLevel
	Asks      []PriceLevel
	// LatencyMS is the round-trip time of the fetch that produced this
	// snapshot. Logged for diagnostics, never persisted.
	LatencyMS int64
}

// BestBid returns the price of the first bid level, or 0 if the side is empty.
func (s Snapshot) BestBid() float64 {
	if len(s.Bids) == 0 {
		return 0
	}
	return s.Bids[0].Price
}

// BestAsk returns the price of the first ask level, or 0 if the side is empty.
func (s Snapshot) BestAsk() float64 {
	if len(s.Asks) == 0 {
		return 0
	}
	return s.Asks[0].Price
}

// PressureRecord is the persisted form of a validated snapshot. Records are
// append-only: written once, never updated or deleted.
type PressureRecord struct {
	Symbol     string
	Timestamp  time.Time
	BidVolTop5 float64
	AskVolTop5 float64
	BestBid    float64
	BestAsk    float64
}

// PressureRow is a PressureRecord together with the metrics the store's
// view_market_pressure view computes at read time.
type PressureRow struct {
	PressureRecord
	ImbalanceRatio float64
	Spread         float64
}

// Metrics holds the values derived from one snapshot. They are recomputed on
// demand (inline at write time for alerting, via the view at read time) and
// never stored as columns.
type Metrics struct {
	BidVol    float64
	AskVol    float64
	Imbalance float64 // (bidVol - askVol) / (bidVol + askVol), in [-1, 1]
	Spread    float64 // bestAsk - bestBid
}
