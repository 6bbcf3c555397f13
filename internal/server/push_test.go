package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hawkline/depthwatch/internal/domain"
	"github.com/hawkline/depthwatch/internal/server/middleware"
	"github.com/hawkline/depthwatch/internal/server/ws"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pressureRows(n int) []domain.PressureRow {
	rows := make([]domain.PressureRow, n)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i] = domain.PressureRow{
			PressureRecord: domain.PressureRecord{
				Symbol:     "BTC/USDT",
				Timestamp:  ts.Add(-time.Duration(i) * time.Second),
				BidVolTop5: 8,
				AskVolTop5: 2,
				BestBid:    64999,
				BestAsk:    65000,
			},
			ImbalanceRatio: 0.6,
			Spread:         1,
		}
	}
	return rows
}

func TestPressurePushBroadcastsLatestRow(t *testing.T) {
	hub := ws.NewHub(discardLogger())
	t.Cleanup(hub.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", hub.HandleWS)
	srv := httptest.NewServer(middleware.Logging(discardLogger())(mux))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	// Registration happens on the server goroutine after the dial returns;
	// rendering before it completes would broadcast to nobody.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	push := NewPressurePush(hub)
	if err := push.Render(context.Background(), pressureRows(3)); err != nil {
		t.Fatalf("render: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read push frame: %v", err)
	}

	var ev pushEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("unmarshal push frame: %v", err)
	}
	if ev.Type != "pressure" {
		t.Errorf("type = %q, want pressure", ev.Type)
	}
	if ev.RowCount != 3 {
		t.Errorf("row_count = %d, want 3", ev.RowCount)
	}
	if ev.Latest == nil {
		t.Fatal("latest row missing")
	}
	if ev.Latest.Symbol != "BTC/USDT" || ev.Latest.ImbalanceRatio != 0.6 || ev.Latest.Spread != 1 {
		t.Errorf("unexpected latest row: %+v", ev.Latest)
	}
}

func TestPressurePushEmptyRows(t *testing.T) {
	hub := ws.NewHub(discardLogger())
	t.Cleanup(hub.Close)

	push := NewPressurePush(hub)
	if err := push.Render(context.Background(), nil); err != nil {
		t.Fatalf("render: %v", err)
	}
}
