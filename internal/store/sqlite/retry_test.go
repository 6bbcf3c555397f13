package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

func TestReadRetryRecoversFromBriefLock(t *testing.T) {
	// A lock held for ~250ms clears within the 5x100ms budget.
	start := time.Now()
	calls := 0
	err := withReadRetry(context.Background(), 5, 100*time.Millisecond, func() error {
		calls++
		if time.Since(start) < 250*time.Millisecond {
			return domain.ErrLockContention
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success within budget: %v", err)
	}
	if calls < 2 || calls > 5 {
		t.Fatalf("calls got %d", calls)
	}
}

func TestReadRetryExhaustion(t *testing.T) {
	calls := 0
	err := withReadRetry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return domain.ErrLockContention
	})
	if !errors.Is(err, domain.ErrLockContention) {
		t.Fatalf("want ErrLockContention, got %v", err)
	}
	if calls != 5 {
		t.Fatalf("calls got %d want 5", calls)
	}
}

func TestReadRetryNonLockErrorAborts(t *testing.T) {
	boom := errors.New("disk on fire")
	calls := 0
	err := withReadRetry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want original error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("must not retry fatal errors, calls got %d", calls)
	}
}

func TestReadRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withReadRetry(ctx, 5, 50*time.Millisecond, func() error {
		return domain.ErrLockContention
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestIsLockContentionStringFallback(t *testing.T) {
	if !isLockContention(errors.New("sqlite: step: database is locked (5) (SQLITE_BUSY)")) {
		t.Fatal("locked message must classify as contention")
	}
	if isLockContention(errors.New("no such table: orderbook_snapshots")) {
		t.Fatal("schema error must not classify as contention")
	}
	if !isLockContention(domain.ErrLockContention) {
		t.Fatal("sentinel must classify as contention")
	}
}
