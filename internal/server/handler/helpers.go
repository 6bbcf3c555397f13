package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// PressureRowJSON is the wire form of one pressure view row. Field names
// match the persisted schema columns.
type PressureRowJSON struct {
	Symbol         string    `json:"symbol"`
	Timestamp      time.Time `json:"timestamp"`
	BidVolTop5     float64   `json:"bid_vol_top5"`
	AskVolTop5     float64   `json:"ask_vol_top5"`
	BestBid        float64   `json:"best_bid"`
	BestAsk        float64   `json:"best_ask"`
	ImbalanceRatio float64   `json:"imbalance_ratio"`
	Spread         float64   `json:"spread"`
}

// ToJSONRows converts store rows to their wire form, preserving order.
func ToJSONRows(rows []domain.PressureRow) []PressureRowJSON {
	out := make([]PressureRowJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, PressureRowJSON{
			Symbol:         r.Symbol,
			Timestamp:      r.Timestamp,
			BidVolTop5:     r.BidVolTop5,
			AskVolTop5:     r.AskVolTop5,
			BestBid:        r.BestBid,
			BestAsk:        r.BestAsk,
			ImbalanceRatio: r.ImbalanceRatio,
			Spread:         r.Spread,
		})
	}
	return out
}
