package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "lean-dashboard/internal/errors"
	"lean-dashboard/internal/models"
)

// Archive defines the long-term equity archive interface.
type Archive interface {
	SaveEquityPoints(ctx context.Context, session string, points []models.EquityPoint) error
	GetEquityPoints(ctx context.Context, session string, from, to time.Time) ([]models.EquityPoint, error)
	SaveSample(ctx context.Context, session string, sample models.RuntimeSample) error
	GetSamples(ctx context.Context, session string, limit int) ([]models.RuntimeSample, error)
	LastEquityTime(ctx context.Context, session string) (time.Time, error)
	Close() error
}

// ArchiveStore implements Archive using SQLite. It mirrors the per-session
// JSON caches into one queryable file so history survives session directory
// cleanup; it is never a source of truth for the live view.
type ArchiveStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewArchiveStore opens (or creates) the archive at dbPath.
func NewArchiveStore(dbPath string) (*ArchiveStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &ArchiveStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *ArchiveStore) initSchema() error {
	schema := `
	-- Reconstructed equity points, one row per session instant
	CREATE TABLE IF NOT EXISTS equity_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		close REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(session, timestamp)
	);

	-- Numeric samples parsed from the engine's runtime statistics
	CREATE TABLE IF NOT EXISTS runtime_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		equity REAL NOT NULL,
		holdings REAL NOT NULL,
		unrealized REAL NOT NULL,
		fees REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(session, timestamp)
	);

	CREATE INDEX IF NOT EXISTS idx_equity_session_time ON equity_points(session, timestamp);
	CREATE INDEX IF NOT EXISTS idx_samples_session_time ON runtime_samples(session, timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveEquityPoints upserts a batch of equity points for a session. Replays
// of the same instant overwrite, matching the cache's latest-write-wins
// rule.
func (s *ArchiveStore) SaveEquityPoints(ctx context.Context, session string, points []models.EquityPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("archive", session, "save_equity", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO equity_points (session, timestamp, close)
		VALUES (?, ?, ?)`)
	if err != nil {
		return apperrors.NewStoreError("archive", session, "save_equity", err)
	}
	defer stmt.Close()

	for _, pt := range points {
		if _, err := stmt.ExecContext(ctx, session, pt.Datetime, pt.Close); err != nil {
			return apperrors.NewStoreError("archive", session, "save_equity", err)
		}
	}
	return tx.Commit()
}

// GetEquityPoints returns the archived points of a session within [from, to],
// ascending. Zero bounds mean unbounded.
func (s *ArchiveStore) GetEquityPoints(ctx context.Context, session string, from, to time.Time) ([]models.EquityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT timestamp, close FROM equity_points WHERE session = ?`
	args := []interface{}{session}
	if !from.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY timestamp ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("archive", session, "get_equity", err)
	}
	defer rows.Close()

	var points []models.EquityPoint
	for rows.Next() {
		var at time.Time
		var close float64
		if err := rows.Scan(&at, &close); err != nil {
			return nil, apperrors.NewStoreError("archive", session, "get_equity", err)
		}
		points = append(points, models.FlatPoint(at, close))
	}
	return points, rows.Err()
}

// SaveSample upserts one runtime sample.
func (s *ArchiveStore) SaveSample(ctx context.Context, session string, sample models.RuntimeSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runtime_samples (session, timestamp, equity, holdings, unrealized, fees)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session, sample.Datetime, sample.Equity, sample.Holdings, sample.Unrealized, sample.Fees)
	if err != nil {
		return apperrors.NewStoreError("archive", session, "save_sample", err)
	}
	return nil
}

// GetSamples returns a session's most recent samples, ascending, capped at
// limit when positive.
func (s *ArchiveStore) GetSamples(ctx context.Context, session string, limit int) ([]models.RuntimeSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT timestamp, equity, holdings, unrealized, fees
		FROM runtime_samples WHERE session = ? ORDER BY timestamp DESC`
	args := []interface{}{session}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("archive", session, "get_samples", err)
	}
	defer rows.Close()

	var samples []models.RuntimeSample
	for rows.Next() {
		var sample models.RuntimeSample
		if err := rows.Scan(&sample.Datetime, &sample.Equity, &sample.Holdings, &sample.Unrealized, &sample.Fees); err != nil {
			return nil, apperrors.NewStoreError("archive", session, "get_samples", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to ascending
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

// LastEquityTime returns the newest archived timestamp for a session, or a
// zero time when the session has no archive rows.
func (s *ArchiveStore) LastEquityTime(ctx context.Context, session string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var at sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(timestamp) FROM equity_points WHERE session = ?`, session).Scan(&at)
	if err != nil {
		return time.Time{}, apperrors.NewStoreError("archive", session, "last_equity_time", err)
	}
	if !at.Valid {
		return time.Time{}, nil
	}
	return at.Time, nil
}

// Close closes the underlying database.
func (s *ArchiveStore) Close() error {
	return s.db.Close()
}
