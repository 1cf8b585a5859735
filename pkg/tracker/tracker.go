// Package tracker keeps the assistant usage ledger: one row per recommend or
// chat call with the caller, outcome and model latency.
package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/coursewise/coursewise/pkg/models"
)

// Tracker records and queries assistant calls.
type Tracker interface {
	// Record appends a call to the ledger.
	Record(ctx context.Context, rec models.UsageRecord) error
	// QueryByCaller returns a caller's calls since a given time, newest first.
	QueryByCaller(ctx context.Context, callerID string, since time.Time) ([]models.UsageRecord, error)
	// Recent returns the latest calls across all callers.
	Recent(ctx context.Context, limit int) ([]models.UsageRecord, error)
	// DispatchedSince counts calls that reached the model since a given time.
	DispatchedSince(ctx context.Context, since time.Time) (int, error)
	// Summary aggregates calls per caller and kind, optionally for one caller.
	Summary(ctx context.Context, callerID string) ([]models.UsageSummary, error)
	// Close releases resources.
	Close() error
}

// SQLiteTracker implements Tracker with a SQLite database.
type SQLiteTracker struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS assistant_calls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL DEFAULT '',
	caller_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	model TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_calls_caller_time ON assistant_calls(caller_id, created_at);
`

const selectColumns = `SELECT id, request_id, caller_id, kind, model, outcome, latency_ms, created_at FROM assistant_calls`

// New creates a SQLiteTracker and runs auto-migration.
func New(dbPath string) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open tracker db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tracker db: %w", err)
	}

	return &SQLiteTracker{db: db}, nil
}

// Record stores one call. A zero CreatedAt is stamped with the current time.
func (t *SQLiteTracker) Record(ctx context.Context, rec models.UsageRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO assistant_calls (request_id, caller_id, kind, model, outcome, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.CallerID, string(rec.Kind), rec.Model, string(rec.Outcome), rec.LatencyMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}

// QueryByCaller returns a caller's calls since a given time.
func (t *SQLiteTracker) QueryByCaller(ctx context.Context, callerID string, since time.Time) ([]models.UsageRecord, error) {
	rows, err := t.db.QueryContext(ctx,
		selectColumns+` WHERE caller_id = ? AND created_at >= ? ORDER BY created_at DESC, id DESC`,
		callerID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	return scanRecords(rows)
}

// Recent returns up to limit calls, newest first.
func (t *SQLiteTracker) Recent(ctx context.Context, limit int) ([]models.UsageRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := t.db.QueryContext(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent calls: %w", err)
	}
	return scanRecords(rows)
}

// DispatchedSince counts calls that consumed budget since a given time.
func (t *SQLiteTracker) DispatchedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assistant_calls WHERE outcome IN (?, ?) AND created_at >= ?`,
		string(models.OutcomeOK), string(models.OutcomeUpstreamError), since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dispatched: %w", err)
	}
	return n, nil
}

// Summary returns calls grouped by caller and kind.
func (t *SQLiteTracker) Summary(ctx context.Context, callerID string) ([]models.UsageSummary, error) {
	query := `SELECT caller_id, kind, COUNT(*),
		SUM(CASE WHEN outcome = 'cache_hit' THEN 1 ELSE 0 END),
		SUM(CASE WHEN outcome IN ('ok', 'upstream_error') THEN 1 ELSE 0 END),
		SUM(CASE WHEN outcome = 'upstream_error' THEN 1 ELSE 0 END),
		COALESCE(AVG(CASE WHEN outcome IN ('ok', 'upstream_error') THEN latency_ms END), 0.0)
		FROM assistant_calls`
	var args []any
	if callerID != "" {
		query += ` WHERE caller_id = ?`
		args = append(args, callerID)
	}
	query += ` GROUP BY caller_id, kind ORDER BY caller_id, kind`

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.UsageSummary
	for rows.Next() {
		var s models.UsageSummary
		var kind string
		if err := rows.Scan(&s.CallerID, &kind, &s.RequestCount, &s.CacheHits, &s.ModelCalls, &s.Failures, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		s.Kind = models.CallKind(kind)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close releases the database connection.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

func scanRecords(rows *sql.Rows) ([]models.UsageRecord, error) {
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		var r models.UsageRecord
		var kind, outcome string
		if err := rows.Scan(&r.ID, &r.RequestID, &r.CallerID, &kind, &r.Model, &outcome, &r.LatencyMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		r.Kind = models.CallKind(kind)
		r.Outcome = models.CallOutcome(outcome)
		records = append(records, r)
	}
	return records, rows.Err()
}
