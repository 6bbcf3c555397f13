// Package venue provides order-book depth clients for supported market
// venues, selected at startup through an explicit registry rather than
// reflective construction from a string.
package venue

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

// Options carries the construction parameters every registered venue may use.
type Options struct {
	// Timeout bounds one depth fetch for the REST venues.
	Timeout time.Duration
	// SimSeed seeds the sim venue; 0 seeds from the clock.
	SimSeed int64
}

// Constructor builds a venue client from the given options.
type Constructor func(opts Options) domain.VenueClient

var registry = map[string]Constructor{
	"bybit":   func(opts Options) domain.VenueClient { return NewBybit(opts.Timeout) },
	"binance": func(opts Options) domain.VenueClient { return NewBinance(opts.Timeout) },
	"sim": func(opts Options) domain.VenueClient {
		seed := opts.SimSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return NewSim(seed)
	},
}

// New returns the client registered under id, case-insensitively.
func New(id string, opts Options) (domain.VenueClient, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("venue: %q (known: %s): %w", id, strings.Join(Names(), ", "), domain.ErrUnknownVenue)
	}
	return ctor(opts), nil
}

// Names returns the sorted identifiers of all registered venues.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// marketSymbol converts a "BASE/QUOTE" pair into the concatenated form the
// exchange REST APIs expect (e.g. "BTC/USDT" -> "BTCUSDT").
func marketSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}
