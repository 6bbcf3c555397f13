package pressure

import (
	"math"
	"testing"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

func bookSnap(bids, asks []domain.PriceLevel) domain.Snapshot {
	return domain.Snapshot{
		Symbol:    "BTC/USDT",
		Timestamp: time.Now(),
		Bids:      bids,
		Asks:      asks,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeBalancedBook(t *testing.T) {
	m := Compute(bookSnap(
		[]domain.PriceLevel{{Price: 99, Quantity: 1}},
		[]domain.PriceLevel{{Price: 100, Quantity: 1}},
	))
	if !almostEqual(m.Imbalance, 0) {
		t.Fatalf("imbalance got %v want 0", m.Imbalance)
	}
	if !almostEqual(m.Spread, 1) {
		t.Fatalf("spread got %v want 1", m.Spread)
	}
}

func TestComputeImbalance(t *testing.T) {
	cases := []struct {
		name   string
		bidVol float64
		askVol float64
		want   float64
	}{
		{"bid heavy", 8, 2, 0.6},
		{"exactly at threshold", 9, 1, 0.8},
		{"extreme bid", 9.5, 0.5, 0.9},
		{"ask heavy", 2, 8, -0.6},
		{"all bids", 4, 0, 1},
		{"all asks", 0, 4, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Compute(bookSnap(
				[]domain.PriceLevel{{Price: 99, Quantity: tc.bidVol}},
				[]domain.PriceLevel{{Price: 100, Quantity: tc.askVol}},
			))
			if !almostEqual(m.Imbalance, tc.want) {
				t.Fatalf("imbalance got %v want %v", m.Imbalance, tc.want)
			}
			if m.Imbalance < -1 || m.Imbalance > 1 {
				t.Fatalf("imbalance %v outside [-1, 1]", m.Imbalance)
			}
		})
	}
}

func TestComputeZeroVolume(t *testing.T) {
	m := Compute(bookSnap(
		[]domain.PriceLevel{{Price: 99, Quantity: 0}},
		[]domain.PriceLevel{{Price: 100, Quantity: 0}},
	))
	if m.Imbalance != 0 {
		t.Fatalf("zero total volume must yield 0, got %v", m.Imbalance)
	}
}

func TestComputeSumsAllLevels(t *testing.T) {
	m := Compute(bookSnap(
		[]domain.PriceLevel{
			{Price: 99, Quantity: 1}, {Price: 98, Quantity: 2}, {Price: 97, Quantity: 3},
		},
		[]domain.PriceLevel{
			{Price: 100, Quantity: 0.5}, {Price: 101, Quantity: 1.5},
		},
	))
	if !almostEqual(m.BidVol, 6) {
		t.Fatalf("bid vol got %v want 6", m.BidVol)
	}
	if !almostEqual(m.AskVol, 2) {
		t.Fatalf("ask vol got %v want 2", m.AskVol)
	}
	if !almostEqual(m.Spread, 1) {
		t.Fatalf("spread uses best levels, got %v want 1", m.Spread)
	}
}

func TestRecord(t *testing.T) {
	s := bookSnap(
		[]domain.PriceLevel{{Price: 99, Quantity: 8}},
		[]domain.PriceLevel{{Price: 100, Quantity: 2}},
	)
	rec := Record(s, Compute(s))
	if rec.Symbol != "BTC/USDT" {
		t.Fatalf("symbol got %s", rec.Symbol)
	}
	if rec.BidVolTop5 != 8 || rec.AskVolTop5 != 2 {
		t.Fatalf("volumes got %v/%v", rec.BidVolTop5, rec.AskVolTop5)
	}
	if rec.BestBid != 99 || rec.BestAsk != 100 {
		t.Fatalf("best prices got %v/%v", rec.BestBid, rec.BestAsk)
	}
	if !rec.Timestamp.Equal(s.Timestamp) {
		t.Fatal("timestamp must carry over")
	}
}
