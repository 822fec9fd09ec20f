package store

import (
	"context"
	"time"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

// NopHistory discards every record. Used when history.driver is none.
type NopHistory struct{}

func NewNopHistory() *NopHistory { return &NopHistory{} }

func (NopHistory) Append(context.Context, model.HistoryRecord) error { return nil }
func (NopHistory) List(context.Context, int) ([]model.HistoryRecord, error) {
	return []model.HistoryRecord{}, nil
}
func (NopHistory) Prune(context.Context, time.Duration) (int64, error) { return 0, nil }
