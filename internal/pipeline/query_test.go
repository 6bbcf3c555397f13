package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

type captureRenderer struct {
	renders [][]domain.PressureRow
	err     error
}

func (r *captureRenderer) Render(_ context.Context, rows []domain.PressureRow) error {
	r.renders = append(r.renders, rows)
	return r.err
}

type failingStore struct{}

func (failingStore) InitSchema(context.Context) error { return nil }
func (failingStore) Append(context.Context, domain.PressureRecord) error {
	return nil
}
func (failingStore) ReadRecent(context.Context, int) ([]domain.PressureRow, error) {
	return nil, errors.New("no such table")
}

func TestQueryTickRendersRows(t *testing.T) {
	store := &recordingStore{}
	_ = store.Append(context.Background(), domain.PressureRecord{Symbol: "BTC/USDT"})

	r := &captureRenderer{}
	q := NewQueryLoop(store, []domain.Renderer{r}, 60, time.Second, discard())
	q.Tick(context.Background())

	if len(r.renders) != 1 {
		t.Fatalf("renders got %d want 1", len(r.renders))
	}
	if len(r.renders[0]) != 1 {
		t.Fatalf("rows got %d want 1", len(r.renders[0]))
	}
}

func TestQueryTickRendersEmptyResult(t *testing.T) {
	// Empty is valid steady state, not an error: renderers still run so
	// they can show a waiting indication.
	r := &captureRenderer{}
	q := NewQueryLoop(&recordingStore{}, []domain.Renderer{r}, 60, time.Second, discard())
	q.Tick(context.Background())

	if len(r.renders) != 1 {
		t.Fatal("empty result must still be rendered")
	}
	if len(r.renders[0]) != 0 {
		t.Fatal("rows should be empty")
	}
}

func TestQueryTickSkipsRenderOnReadError(t *testing.T) {
	r := &captureRenderer{}
	q := NewQueryLoop(failingStore{}, []domain.Renderer{r}, 60, time.Second, discard())
	q.Tick(context.Background())

	if len(r.renders) != 0 {
		t.Fatal("read failure must skip the render")
	}
}

func TestQueryTickRendererErrorDoesNotStopOthers(t *testing.T) {
	bad := &captureRenderer{err: errors.New("broken pipe")}
	good := &captureRenderer{}
	q := NewQueryLoop(&recordingStore{}, []domain.Renderer{bad, good}, 60, time.Second, discard())
	q.Tick(context.Background())

	if len(good.renders) != 1 {
		t.Fatal("remaining renderers must still run")
	}
}

func TestQueryRunStopsOnCancel(t *testing.T) {
	q := NewQueryLoop(&recordingStore{}, nil, 60, time.Second, discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}
