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

const defaultBinanceHost = "https://api.binance.com"

// Binance fetches spot order-book depth from the Binance REST API.
type Binance struct {
	baseURL    string
	httpClient *http.Client
}

// NewBinance creates a Binance client with the given request timeout.
func NewBinance(timeout time.Duration) *Binance {
	return &Binance{
		baseURL:    defaultBinanceHost,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the venue identifier.
func (b *Binance) Name() string { return "binance" }

// binanceDepthResponse mirrors GET /api/v3/depth.
type binanceDepthResponse struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

// binanceError is the error envelope Binance returns on non-2xx responses.
type binanceError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// FetchOrderBook returns the current top-of-book depth for symbol, at most
// domain.DepthLimit levels per side.
func (b *Binance) FetchOrderBook(ctx context.Context, symbol string) (domain.Snapshot, error) {
	params := url.Values{}
	params.Set("symbol", marketSymbol(symbol))
	params.Set("limit", strconv.Itoa(domain.DepthLimit))

	reqURL := b.baseURL + "/api/v3/depth?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("binance: create request: %w", err)
	}

	started := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("binance: fetch depth: %v: %w", err, domain.ErrVenueUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var ve binanceError
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 512)).Decode(&ve); decodeErr == nil && ve.Msg != "" {
			return domain.Snapshot{}, fmt.Errorf("binance: venue error %d: %s", ve.Code, ve.Msg)
		}
		return domain.Snapshot{}, fmt.Errorf("binance: status %d", resp.StatusCode)
	}

	var depth binanceDepthResponse
	if err := json.NewDecoder(resp.Body).Decode(&depth); err != nil {
		return domain.Snapshot{}, fmt.Errorf("binance: decode depth: %w", err)
	}

	bids, err := parseLevels(depth.Bids)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("binance: parse bids: %w", err)
	}
	asks, err := parseLevels(depth.Asks)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("binance: parse asks: %w", err)
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
