package domain

import "time"

// Alert is one imbalance alert event produced by the debouncer.
type Alert struct {
	ID        string
	Symbol    string
	Imbalance float64
	BestBid   float64
	FiredAt   time.Time
}

// Bullish reports whether the alert signals bid-side (buying) pressure.
func (a Alert) Bullish() bool {
	return a.Imbalance > 0
}
