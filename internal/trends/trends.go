// Package trends serves the market-trends skill ranking from a single
// rolling cache slot, regenerating it through the LLM once it is a day old.
package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/ai"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/metrics"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

// CacheKey is the single logical key the payload is stored under.
const CacheKey = "market_trends"

// MaxAge is how long a cached payload is served before regeneration.
const MaxAge = 24 * time.Hour

// ParseErrorSkill is the lone skill reported when the model answer is not JSON.
const ParseErrorSkill = "JSON Parsing Error"

// Generator produces the raw model answer for the trends prompt.
type Generator interface {
	GenerateTrends(ctx context.Context) (string, error)
}

// Manager fronts a Generator with a time-gated cache. Concurrent stale
// requests may both regenerate; the last write wins.
type Manager struct {
	gen     Generator
	store   model.CacheStore
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewManager creates a Manager. A nil store disables caching.
func NewManager(gen Generator, store model.CacheStore, m *metrics.Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		gen:     gen,
		store:   store,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// GetTrends returns the cached payload while fresh, otherwise regenerates,
// writes through and returns the new payload. Generation errors are reported
// inside the payload and never cached.
func (m *Manager) GetTrends(ctx context.Context) model.TrendsPayload {
	if m.store == nil {
		m.metrics.RecordTrendsCache(metrics.CacheDisabled)
	} else if payload, ok := m.cached(ctx); ok {
		m.metrics.RecordTrendsCache(metrics.CacheHit)
		m.logger.Debug("returning cached market trends")
		return payload
	} else {
		m.metrics.RecordTrendsCache(metrics.CacheMiss)
	}

	m.logger.Debug("generating market trends")
	raw, err := m.gen.GenerateTrends(ctx)
	if err != nil {
		m.logger.Error("market trends generation failed", "error", err)
		return model.TrendsPayload{
			TopSkills: []model.SkillRank{},
			Error:     describe(err),
		}
	}

	payload := Shape(ParseSkills(raw))

	if m.store != nil {
		if err := m.write(ctx, payload); err != nil {
			m.logger.Warn("market trends cache write failed", "error", err)
		}
	}
	return payload
}

func (m *Manager) cached(ctx context.Context) (model.TrendsPayload, bool) {
	data, storedAt, found, err := m.store.Get(ctx, CacheKey)
	if err != nil {
		m.logger.Warn("market trends cache read failed", "error", err)
		return model.TrendsPayload{}, false
	}
	if !found || m.now().Sub(storedAt) >= MaxAge {
		return model.TrendsPayload{}, false
	}

	var payload model.TrendsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		m.logger.Warn("market trends cache entry unreadable", "error", err)
		return model.TrendsPayload{}, false
	}
	if payload.TopSkills == nil {
		payload.TopSkills = []model.SkillRank{}
	}
	return payload, true
}

func (m *Manager) write(ctx context.Context, payload model.TrendsPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal trends payload: %w", err)
	}
	return m.store.Set(ctx, CacheKey, data, m.now().UTC())
}

func describe(err error) string {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return "LLM API error: " + err.Error()
	}
	return "Error generating market trends: " + err.Error()
}

// ParseSkills decodes the model answer into a list of skill values. A top-level
// object yields its first array-valued field in document order, or an empty
// list when it has none. Anything that is not an array or object yields the
// single ParseErrorSkill sentinel.
func ParseSkills(text string) []any {
	text = ai.StripFences(text)

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return []any{ParseErrorSkill}
	}
	switch v := decoded.(type) {
	case []any:
		return v
	case map[string]any:
		return firstArray(text)
	default:
		return []any{ParseErrorSkill}
	}
}

// firstArray walks the top-level object's fields in order. The input is
// already known to be a valid object.
func firstArray(text string) []any {
	dec := json.NewDecoder(strings.NewReader(text))
	if _, err := dec.Token(); err != nil {
		return []any{}
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return []any{}
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return []any{}
		}
		if arr, ok := val.([]any); ok {
			return arr
		}
	}
	return []any{}
}

// Shape ranks skills by position, starting at 1. Falsy entries are skipped
// but still consume their rank.
func Shape(skills []any) model.TrendsPayload {
	ranked := make([]model.SkillRank, 0, len(skills))
	for i, s := range skills {
		if !model.Truthy(s) {
			continue
		}
		ranked = append(ranked, model.SkillRank{Skill: skillName(s), Rank: i + 1})
	}
	return model.TrendsPayload{TopSkills: ranked}
}

func skillName(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
