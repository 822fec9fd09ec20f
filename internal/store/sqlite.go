package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the cache slot and the analysis history in one SQLite file.
// It implements both model.CacheStore and model.HistoryStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// cache and history tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key       TEXT PRIMARY KEY,
			value     BLOB NOT NULL,
			stored_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS analysis_history (
			id              TEXT PRIMARY KEY,
			created_at      INTEGER NOT NULL,
			file_name       TEXT NOT NULL,
			job_description TEXT NOT NULL,
			result          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS analysis_history_created_at ON analysis_history (created_at)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating sqlite schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the cached value for key and the time it was stored.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	var (
		value    []byte
		storedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, stored_at FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return value, time.Unix(0, storedAt).UTC(), true, nil
}

// Set overwrites the cached value for key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, storedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at`,
		key, value, storedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Append records one finished analysis.
func (s *SQLiteStore) Append(ctx context.Context, rec model.HistoryRecord) error {
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encoding history record %s: %w", rec.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_history (id, created_at, file_name, job_description, result)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UnixNano(), rec.FileName, rec.JobDescription, string(result),
	)
	if err != nil {
		return fmt.Errorf("inserting history record %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, file_name, job_description, result
		 FROM analysis_history ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	records := []model.HistoryRecord{}
	for rows.Next() {
		var (
			rec       model.HistoryRecord
			createdAt int64
			result    string
		)
		if err := rows.Scan(&rec.ID, &createdAt, &rec.FileName, &rec.JobDescription, &result); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if err := json.Unmarshal([]byte(result), &rec.Result); err != nil {
			return nil, fmt.Errorf("decoding history record %s: %w", rec.ID, err)
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes history records older than the given duration.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM analysis_history WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning history older than %v: %w", olderThan, err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
