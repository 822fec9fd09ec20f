package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore implements model.CacheStore and model.HistoryStore on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a pgx pool and runs schema migrations.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Get returns the cached value for key and the time it was stored.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	var (
		value    []byte
		storedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		"SELECT value, stored_at FROM cache_entries WHERE key = $1", key,
	).Scan(&value, &storedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return value, storedAt.UTC(), true, nil
}

// Set overwrites the cached value for key.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, storedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cache_entries (key, value, stored_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, stored_at = EXCLUDED.stored_at`,
		key, value, storedAt,
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Append records one finished analysis.
func (s *PostgresStore) Append(ctx context.Context, rec model.HistoryRecord) error {
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encoding history record %s: %w", rec.ID, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_history (id, created_at, file_name, job_description, result)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.CreatedAt, rec.FileName, rec.JobDescription, result,
	)
	if err != nil {
		return fmt.Errorf("inserting history record %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, created_at, file_name, job_description, result
		 FROM analysis_history ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	records := []model.HistoryRecord{}
	for rows.Next() {
		var (
			rec    model.HistoryRecord
			result []byte
		)
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.FileName, &rec.JobDescription, &result); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if err := json.Unmarshal(result, &rec.Result); err != nil {
			return nil, fmt.Errorf("decoding history record %s: %w", rec.ID, err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes history records older than the given duration.
func (s *PostgresStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM analysis_history WHERE created_at < $1", time.Now().Add(-olderThan),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning history older than %v: %w", olderThan, err)
	}
	return tag.RowsAffected(), nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
