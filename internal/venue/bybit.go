package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

const defaultBybitHost = "https://api.bybit.com"

// Bybit fetches spot order-book depth from the Bybit v5 REST API.
type Bybit struct {
	baseURL    string
	httpClient *http.Client
}

// NewBybit creates a Bybit client with the given request timeout.
func NewBybit(timeout time.Duration) *Bybit {
	return &Bybit{
		baseURL:    defaultBybitHost,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the venue identifier.
func (b *Bybit) Name() string { return "bybit" }

// bybitDepthResponse mirrors GET /v5/market/orderbook. Levels arrive as
// [price, quantity] string pairs, best-first.
type bybitDepthResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Symbol string      `json:"s"`
		Bids   [][2]string `json:"b"`
		Asks   [][2]string `json:"a"`
	} `json:"result"`
}

// FetchOrderBook returns the current top-of-book depth for symbol, at most
// domain.DepthLimit levels per side.
func (b *Bybit) FetchOrderBook(ctx context.Context, symbol string) (domain.Snapshot, error) {
	params := url.Values{}
	params.Set("category", "spot")
	params.Set("symbol", marketSymbol(symbol))
	params.Set("limit", strconv.Itoa(domain.DepthLimit))

	reqURL := b.baseURL + "/v5/market/orderbook?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("bybit: create request: %w", err)
	}

	started := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("bybit: fetch depth: %v: %w", err, domain.ErrVenueUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Snapshot{}, fmt.Errorf("bybit: status %d: %s", resp.StatusCode, string(body))
	}

	var depth bybitDepthResponse
	if err := json.NewDecoder(resp.Body).Decode(&depth); err != nil {
		return domain.Snapshot{}, fmt.Errorf("bybit: decode depth: %w", err)
	}
	if depth.RetCode != 0 {
		return domain.Snapshot{}, fmt.Errorf("bybit: venue error %d: %s", depth.RetCode, depth.RetMsg)
	}

	bids, err := parseLevels(depth.Result.Bids)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("bybit: parse bids: %w", err)
	}
	asks, err := parseLevels(depth.Result.Asks)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("bybit: parse asks: %w", err)
	}

	return domain.Snapshot{
		Venue:     b.Name(),
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Bids:      bids,
		Asks:      asks,
		LatencyMS: time.Since(started).Milliseconds(),
	}, nil
}

// parseLevels converts [price, quantity] string pairs into price levels,
// truncating at domain.DepthLimit.
func parseLevels(raw [][2]string) ([]domain.PriceLevel, error) {
	if len(raw) > domain.DepthLimit {
		raw = raw[:domain.DepthLimit]
	}
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		price, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", pair[0], err)
		}
		qty, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("quantity %q: %w", pair[1], err)
		}
		levels = append(levels, domain.PriceLevel{Price: price, Quantity: qty})
	}
	return levels, nil
}
