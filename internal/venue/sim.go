package venue

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

// Sim is a synthetic venue for offline runs. It random-walks a mid price and
// quotes five levels per side around it. Every crossedEvery-th book is
// deliberately crossed and every skewEvery-th book heavily bid-skewed, so the
// validator and alerting paths see traffic without a live exchange.
type Sim struct {
	mu   sync.Mutex
	rng  *rand.Rand
	mid  float64
	tick int
}

const (
	simBasePrice = 65000.0
	crossedEvery = 17
	skewEvery    = 11
)

// NewSim creates a Sim seeded with seed; a fixed seed gives a reproducible
// sequence.
func NewSim(seed int64) *Sim {
	return &Sim{
		rng: rand.New(rand.NewSource(seed)),
		mid: simBasePrice,
	}
}

// Name returns the venue identifier.
func (s *Sim) Name() string { return "sim" }

// FetchOrderBook returns the next synthetic snapshot. It never fails.
func (s *Sim) FetchOrderBook(_ context.Context, symbol string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	s.mid += (s.rng.Float64() - 0.5) * 20

	halfSpread := 0.5 + s.rng.Float64()*2
	bestBid := s.mid - halfSpread
	bestAsk := s.mid + halfSpread
	if s.tick%crossedEvery == 0 {
		// Fleeting crossed-market artifact; must be rejected upstream.
		bestBid, bestAsk = bestAsk, bestBid
	}

	skewed := s.tick%skewEvery == 0

	var bids, asks []domain.PriceLevel
	for i := 0; i < domain.DepthLimit; i++ {
		step := float64(i) * halfSpread
		bidQty := 0.2 + s.rng.Float64()
		askQty := 0.2 + s.rng.Float64()
		if skewed {
			// Fixed heavy bid skew: totals 19 vs 1, imbalance 0.9.
			bidQty, askQty = 3.8, 0.2
		}
		bids = append(bids, domain.PriceLevel{Price: bestBid - step, Quantity: bidQty})
		asks = append(asks, domain.PriceLevel{Price: bestAsk + step, Quantity: askQty})
	}

	return domain.Snapshot{
		Venue:     s.Name(),
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Bids:      bids,
		Asks:      asks,
	}, nil
}
