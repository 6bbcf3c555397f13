package ws

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hawkline/depthwatch/internal/server/middleware"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startHub serves the hub behind the same middleware chain the dashboard
// server wires, so the upgrade path under test is the production one.
func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", hub.HandleWS)
	srv := httptest.NewServer(middleware.Logging(discardLogger())(mux))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial %s: %v (status %d)", url, err, status)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// waitForClients polls until the hub sees n clients; registration happens on
// the server goroutine after the dial returns.
func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestUpgradeThroughLoggingMiddleware(t *testing.T) {
	_, url := startHub(t)
	dial(t, url)
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	hub.Broadcast([]byte(`{"type":"pressure"}`))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", kind)
	}
	if string(msg) != `{"type":"pressure"}` {
		t.Fatalf("payload = %s", msg)
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("read after Close should fail")
	}

	if n := hub.ClientCount(); n != 0 {
		t.Fatalf("clients remaining = %d, want 0", n)
	}
}
