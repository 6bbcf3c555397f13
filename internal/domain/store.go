package domain

import "context"

// SnapshotStore is the file-backed append-only store shared by the single
// writer process and any number of reader processes. Implementations open a
// fresh handle per operation and close it immediately so the file lock is
// held only for the duration of one statement.
type SnapshotStore interface {
	// InitSchema creates the snapshot table and pressure view if absent.
	// Idempotent; safe to call on every writer start. A failure here is
	// fatal to the calling process.
	InitSchema(ctx context.Context) error

	// Append inserts exactly one record. It does not retry on lock
	// contention; such failures are reported as ErrLockContention and the
	// record is lost.
	Append(ctx context.Context, rec PressureRecord) error

	// ReadRecent returns up to limit rows, newest first, from the pressure
	// view. Lock contention is retried a bounded number of times; if the
	// budget is exhausted, an empty slice and nil error are returned.
	ReadRecent(ctx context.Context, limit int) ([]PressureRow, error)
}

// VenueClient fetches one top-of-book snapshot per call from a market venue.
type VenueClient interface {
	// Name returns the venue identifier (e.g. "bybit").
	Name() string

	// FetchOrderBook returns the current top-of-book depth for symbol,
	// at most DepthLimit levels per side, best-first.
	FetchOrderBook(ctx context.Context, symbol string) (Snapshot, error)
}

// Notifier delivers one alert. The returned bool reports delivery success;
// the debouncer only starts its cooldown after a successful delivery.
type Notifier interface {
	Send(ctx context.Context, alert Alert) bool
}

// Renderer consumes an ordered sequence of pressure rows, newest first. An
// empty slice is a valid steady-state input and should be rendered as a
// waiting-for-data indication.
type Renderer interface {
	Render(ctx context.Context, rows []PressureRow) error
}
