package alert

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

type fakeNotifier struct {
	ok    bool
	calls []domain.Alert
}

func (f *fakeNotifier) Send(_ context.Context, a domain.Alert) bool {
	f.calls = append(f.calls, a)
	return f.ok
}

func newTestDebouncer(threshold float64, cooldown time.Duration, n domain.Notifier) *Debouncer {
	return NewDebouncer(threshold, cooldown, n, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func metrics(imbalance float64) domain.Metrics {
	return domain.Metrics{Imbalance: imbalance, Spread: 1}
}

func TestNoAlertBelowThreshold(t *testing.T) {
	n := &fakeNotifier{ok: true}
	d := newTestDebouncer(0.8, 300*time.Second, n)
	if a := d.Evaluate(context.Background(), "BTC/USDT", metrics(0.6), 99); a != nil {
		t.Fatal("0.6 <= 0.8 must not alert")
	}
	if len(n.calls) != 0 {
		t.Fatal("notifier must not be called")
	}
}

func TestNoAlertAtExactThreshold(t *testing.T) {
	// Breach comparison is strict.
	n := &fakeNotifier{ok: true}
	d := newTestDebouncer(0.8, 300*time.Second, n)
	if a := d.Evaluate(context.Background(), "BTC/USDT", metrics(0.8), 99); a != nil {
		t.Fatal("imbalance exactly at threshold must not alert")
	}
}

func TestAlertFiresAboveThreshold(t *testing.T) {
	n := &fakeNotifier{ok: true}
	d := newTestDebouncer(0.8, 300*time.Second, n)
	a := d.Evaluate(context.Background(), "BTC/USDT", metrics(0.9), 99)
	if a == nil {
		t.Fatal("0.9 > 0.8 must alert")
	}
	if a.ID == "" || a.Symbol != "BTC/USDT" || a.BestBid != 99 {
		t.Fatalf("alert fields: %+v", a)
	}
	if len(n.calls) != 1 {
		t.Fatalf("notifier calls got %d want 1", len(n.calls))
	}
}

func TestNegativeImbalanceAlerts(t *testing.T) {
	n := &fakeNotifier{ok: true}
	d := newTestDebouncer(0.8, 300*time.Second, n)
	a := d.Evaluate(context.Background(), "BTC/USDT", metrics(-0.85), 99)
	if a == nil {
		t.Fatal("abs(-0.85) > 0.8 must alert")
	}
	if a.Bullish() {
		t.Fatal("negative imbalance is bearish")
	}
}

func TestCooldownSuppressesSecondBreach(t *testing.T) {
	n := &fakeNotifier{ok: true}
	d := newTestDebouncer(0.8, 300*time.Second, n)

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return base }

	if d.Evaluate(context.Background(), "BTC/USDT", metrics(0.9), 99) == nil {
		t.Fatal("first breach must alert")
	}

	// Second breach 10s later stays inside the 300s window.
	d.now = func() time.Time { return base.Add(10 * time.Second) }
	if d.Evaluate(context.Background(), "BTC/USDT", metrics(0.95), 99) != nil {
		t.Fatal("breach inside cooldown must be suppressed")
	}
	if len(n.calls) != 1 {
		t.Fatalf("exactly one notification expected, got %d", len(n.calls))
	}

	// After the window expires the next breach fires again.
	d.now = func() time.Time { return base.Add(301 * time.Second) }
	if d.Evaluate(context.Background(), "BTC/USDT", metrics(0.9), 99) == nil {
		t.Fatal("breach after cooldown must alert")
	}
	if len(n.calls) != 2 {
		t.Fatalf("notifications got %d want 2", len(n.calls))
	}
}

func TestFailedDeliveryDoesNotStartCooldown(t *testing.T) {
	n := &fakeNotifier{ok: false}
	d := newTestDebouncer(0.8, 300*time.Second, n)

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return base }

	if d.Evaluate(context.Background(), "BTC/USDT", metrics(0.9), 99) != nil {
		t.Fatal("failed delivery must not report a fired alert")
	}

	// Next tick retries immediately: delivery now succeeds.
	n.ok = true
	d.now = func() time.Time { return base.Add(time.Second) }
	if d.Evaluate(context.Background(), "BTC/USDT", metrics(0.9), 99) == nil {
		t.Fatal("retry on next tick must alert once delivery succeeds")
	}
	if len(n.calls) != 2 {
		t.Fatalf("send attempts got %d want 2", len(n.calls))
	}
}
