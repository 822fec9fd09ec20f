// Package store holds the cache and history backends: SQLite for a single
// process, Redis for a shared cache slot and Postgres for shared history.
package store

import (
	"context"
	"time"
)

// Pruner is implemented by history stores that can drop old records.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}
