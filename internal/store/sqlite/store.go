// Package sqlite implements domain.SnapshotStore on a single shared SQLite
// file. There is no connection pooling: every operation opens a fresh handle
// and closes it immediately, so the file-level lock is held only for the
// duration of one statement. The engine's own locking is the sole
// coordination mechanism between the writer and reader processes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sqlite3 "modernc.org/sqlite"

	"github.com/hawkline/depthwatch/internal/domain"
)

const (
	// readAttempts and readBackoff bound the reader-side retry on lock
	// contention. Five short retries absorb the writer's brief critical
	// section without adding noticeable latency to a dashboard refresh.
	readAttempts = 5
	readBackoff  = 100 * time.Millisecond
)

// SQLite primary result codes for transient file-lock contention.
const (
	codeBusy   = 5 // SQLITE_BUSY
	codeLocked = 6 // SQLITE_LOCKED
)

// timeLayout is RFC3339 UTC with fixed-width nanoseconds, so lexicographic
// ordering of the stored text equals chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS orderbook_snapshots (
	symbol       TEXT NOT NULL,
	timestamp    TEXT NOT NULL,
	bid_vol_top5 REAL NOT NULL,
	ask_vol_top5 REAL NOT NULL,
	best_bid     REAL NOT NULL,
	best_ask     REAL NOT NULL
)`

const createViewSQL = `
CREATE VIEW IF NOT EXISTS view_market_pressure AS
SELECT
	symbol,
	timestamp,
	bid_vol_top5,
	ask_vol_top5,
	best_bid,
	best_ask,
	(bid_vol_top5 - ask_vol_top5) / NULLIF(bid_vol_top5 + ask_vol_top5, 0) AS imbalance_ratio,
	(best_ask - best_bid) AS spread
FROM orderbook_snapshots`

const insertSQL = `
INSERT INTO orderbook_snapshots
	(symbol, timestamp, bid_vol_top5, ask_vol_top5, best_bid, best_ask)
VALUES (?, ?, ?, ?, ?, ?)`

const readRecentSQL = `
SELECT symbol, timestamp, bid_vol_top5, ask_vol_top5, best_bid, best_ask,
	imbalance_ratio, spread
FROM view_market_pressure
ORDER BY timestamp DESC
LIMIT ?`

// Store implements domain.SnapshotStore against a SQLite file at path.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a Store for the database file at path. The file and schema are
// created lazily by InitSchema.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "store")),
	}
}

// open returns a fresh single-connection handle. busy_timeout is pinned to 0
// so lock contention surfaces immediately and the retry policy here stays the
// only coordination mechanism.
func (s *Store) open(readOnly bool) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(0)", s.path)
	if readOnly {
		dsn += "&mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", s.path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// InitSchema creates the append-only table and the derived view if absent.
// It is idempotent and safe to run on every writer restart. Callers must
// treat an error as fatal.
func (s *Store) InitSchema(ctx context.Context) error {
	db, err := s.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createViewSQL); err != nil {
		return fmt.Errorf("sqlite: create view: %w", err)
	}
	s.logger.DebugContext(ctx, "schema ready", slog.String("path", s.path))
	return nil
}

// Append inserts exactly one record and releases the handle. There is no
// retry on lock contention: the writer is the sole writer and is expected to
// win lock races quickly; retrying here would stack write latency onto the
// fixed polling cadence. Contention is reported as ErrLockContention and the
// record is lost.
func (s *Store) Append(ctx context.Context, rec domain.PressureRecord) error {
	db, err := s.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, insertSQL,
		rec.Symbol,
		rec.Timestamp.UTC().Format(timeLayout),
		rec.BidVolTop5,
		rec.AskVolTop5,
		rec.BestBid,
		rec.BestAsk,
	)
	if err != nil {
		if isLockContention(err) {
			return fmt.Errorf("sqlite: append %s: %w", rec.Symbol, domain.ErrLockContention)
		}
		return fmt.Errorf("sqlite: append %s: %w", rec.Symbol, err)
	}
	return nil
}

// ReadRecent returns up to limit rows from view_market_pressure, newest
// first. Lock contention is retried up to readAttempts times, readBackoff
// apart; an exhausted budget yields an empty result rather than an error,
// since readers tolerate staleness and will poll again next tick.
func (s *Store) ReadRecent(ctx context.Context, limit int) ([]domain.PressureRow, error) {
	var rows []domain.PressureRow
	err := withReadRetry(ctx, readAttempts, readBackoff, func() error {
		var opErr error
		rows, opErr = s.readRecentOnce(ctx, limit)
		return opErr
	})
	if errors.Is(err, domain.ErrLockContention) {
		s.logger.WarnContext(ctx, "read retries exhausted, returning no data",
			slog.Int("attempts", readAttempts),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) readRecentOnce(ctx context.Context, limit int) ([]domain.PressureRow, error) {
	db, err := s.open(true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	res, err := db.QueryContext(ctx, readRecentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read recent: %w", err)
	}
	defer res.Close()

	var rows []domain.PressureRow
	for res.Next() {
		var (
			row       domain.PressureRow
			ts        string
			imbalance sql.NullFloat64
		)
		if err := res.Scan(
			&row.Symbol, &ts,
			&row.BidVolTop5, &row.AskVolTop5,
			&row.BestBid, &row.BestAsk,
			&imbalance, &row.Spread,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse timestamp %q: %w", ts, err)
		}
		row.Timestamp = t
		// NULLIF in the view yields NULL on zero total volume; the
		// metric defines that case as 0.
		if imbalance.Valid {
			row.ImbalanceRatio = imbalance.Float64
		}
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: read recent: %w", err)
	}
	return rows, nil
}

// isLockContention classifies an error as transient file-lock contention.
// It prefers the driver's result code and falls back to message matching for
// errors that arrive wrapped beyond recognition.
func isLockContention(err error) bool {
	if errors.Is(err, domain.ErrLockContention) {
		return true
	}
	var se *sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case codeBusy, codeLocked:
			return true
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
