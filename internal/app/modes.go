package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hawkline/depthwatch/internal/domain"
	"github.com/hawkline/depthwatch/internal/pipeline"
	"github.com/hawkline/depthwatch/internal/render"
	"github.com/hawkline/depthwatch/internal/server"
	"github.com/hawkline/depthwatch/internal/server/handler"
	"github.com/hawkline/depthwatch/internal/server/ws"
)

// IngestMode runs only the writer side: sample depth from the venue, validate,
// persist, and evaluate alerts.
func (a *App) IngestMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting ingest mode",
		slog.String("venue", deps.Venue.Name()),
		slog.String("symbol", a.cfg.Venue.Symbol),
	)

	ingestor := pipeline.NewIngestor(
		deps.Venue,
		a.cfg.Venue.Symbol,
		deps.Validator,
		deps.Store,
		deps.Debouncer,
		time.Duration(a.cfg.Ingest.IntervalSeconds)*time.Second,
		a.logger,
	)
	return ingestor.Run(ctx)
}

// DashboardMode runs only the reader side: poll the pressure view and render
// it to the console and, when the server is enabled, to HTTP and WebSocket
// clients.
func (a *App) DashboardMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting dashboard mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startDashboard(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the writer and reader sides in one process. They still share
// nothing in memory: the reader goes through the store file like a separate
// process would.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	ingestor := pipeline.NewIngestor(
		deps.Venue,
		a.cfg.Venue.Symbol,
		deps.Validator,
		deps.Store,
		deps.Debouncer,
		time.Duration(a.cfg.Ingest.IntervalSeconds)*time.Second,
		a.logger,
	)
	g.Go(func() error {
		return ingestor.Run(ctx)
	})

	a.startDashboard(ctx, g, deps)
	return g.Wait()
}

// startDashboard adds the query loop and, when enabled, the HTTP server to the
// given errgroup.
func (a *App) startDashboard(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	renderers := []domain.Renderer{
		render.NewConsole(os.Stdout, a.cfg.Query.ConsoleMaxRows),
	}

	if a.cfg.Server.Enabled {
		hub := ws.NewHub(a.logger)
		a.closers = append(a.closers, hub.Close)
		renderers = append(renderers, server.NewPressurePush(hub))

		srv := server.NewServer(
			server.Config{Port: a.cfg.Server.Port},
			server.Handlers{
				Health:   handler.NewHealthHandler(),
				Pressure: handler.NewPressureHandler(deps.Store, a.cfg.Query.LimitRows(), a.logger),
			},
			hub,
			a.logger,
		)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	queryLoop := pipeline.NewQueryLoop(
		deps.Store,
		renderers,
		a.cfg.Query.LimitRows(),
		time.Duration(a.cfg.Query.IntervalSeconds)*time.Second,
		a.logger,
	)
	g.Go(func() error {
		return queryLoop.Run(ctx)
	})
}
