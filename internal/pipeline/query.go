package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/hawkline/depthwatch/internal/domain"
)

// QueryLoop runs the reader process loop: read the most recent rows from the
// pressure view and hand them to every renderer, once per tick. An empty read
// is an expected steady-state outcome and is still rendered, as a
// waiting-for-data indication.
type QueryLoop struct {
	store     domain.SnapshotStore
	renderers []domain.Renderer
	limit     int
	interval  time.Duration
	logger    *slog.Logger
}

// NewQueryLoop creates a QueryLoop reading up to limit rows every interval.
func NewQueryLoop(
	store domain.SnapshotStore,
	renderers []domain.Renderer,
	limit int,
	interval time.Duration,
	logger *slog.Logger,
) *QueryLoop {
	return &QueryLoop{
		store:     store,
		renderers: renderers,
		limit:     limit,
		interval:  interval,
		logger:    logger.With(slog.String("component", "query")),
	}
}

// Run ticks immediately, then on every interval until the context is
// cancelled.
func (q *QueryLoop) Run(ctx context.Context) error {
	q.logger.InfoContext(ctx, "query loop starting",
		slog.Int("limit", q.limit),
		slog.Duration("interval", q.interval),
	)

	q.Tick(ctx)

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.logger.InfoContext(ctx, "query loop stopped")
			return ctx.Err()
		case <-ticker.C:
			q.Tick(ctx)
		}
	}
}

// Tick executes one read-render cycle. Read errors other than retry
// exhaustion (which the store already maps to an empty result) skip the
// render for this tick.
func (q *QueryLoop) Tick(ctx context.Context) {
	rows, err := q.store.ReadRecent(ctx, q.limit)
	if err != nil {
		q.logger.ErrorContext(ctx, "read failed, tick skipped",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, r := range q.renderers {
		if err := r.Render(ctx, rows); err != nil {
			q.logger.ErrorContext(ctx, "render failed",
				slog.String("error", err.Error()),
			)
		}
	}
}
