package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/ai"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/analysis"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/archive"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/config"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/extract"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/metrics"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/ratelimit"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/retry"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/store"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/trends"
)

// app is the wired object graph shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	extractor *extract.Extractor
	llm       *ai.LLMAnalyzer
	pipeline  *analysis.Pipeline
	trends    *trends.Manager
	history   model.HistoryStore // nil when history.driver is none
	stores    *storeSet
}

// buildApp wires providers, stores and services from cfg. m may be nil.
// With dryRun set, analyses are not recorded in history.
func buildApp(ctx context.Context, cfg *config.Config, m *metrics.Metrics, dryRun bool, logger *slog.Logger) (*app, error) {
	provider, err := setupProvider(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	llm := ai.NewLLMAnalyzer(provider, m, logger)

	stores := &storeSet{}
	cache, err := stores.cache(ctx, cfg.Cache)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	history, err := stores.history(ctx, cfg.History)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	extractor := extract.New()
	opts := []analysis.Option{analysis.WithMetrics(m)}
	switch {
	case dryRun:
		logger.Info("dry-run mode enabled, analyses will not be recorded")
		opts = append(opts, analysis.WithHistory(store.NewNopHistory()))
	case history != nil:
		opts = append(opts, analysis.WithHistory(history))
	}
	if cfg.Archive.Enabled {
		arch, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			_ = stores.Close()
			return nil, fmt.Errorf("setup archive: %w", err)
		}
		opts = append(opts, analysis.WithArchiver(arch))
		logger.Info("resume archival enabled", "bucket", cfg.Archive.Bucket, "prefix", cfg.Archive.Prefix)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		extractor: extractor,
		llm:       llm,
		pipeline:  analysis.NewPipeline(cfg.Analysis.Mode, extractor, llm, logger, opts...),
		trends:    trends.NewManager(llm, cache, m, logger),
		history:   history,
		stores:    stores,
	}, nil
}

func (a *app) Close() {
	if err := a.stores.Close(); err != nil {
		a.logger.Warn("closing stores", "error", err)
	}
}

// setupProvider builds the configured model backend with its optional rate
// limit and retry decorators. Without an API key every call fails with
// ai.ErrProviderDisabled, which heuristic mode never reaches.
func setupProvider(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (ai.LLMProvider, error) {
	if cfg.APIKey == "" {
		logger.Info("no llm api key configured, model features disabled")
		return ai.NewNopProvider(), nil
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	var p ai.LLMProvider
	switch cfg.Provider {
	case config.ProviderGemini:
		gp, err := ai.NewGeminiProvider(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient)
		if err != nil {
			return nil, fmt.Errorf("setup gemini provider: %w", err)
		}
		p = gp
	default:
		p = ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.MaxTokens, httpClient)
	}
	logger.Info("llm provider configured", "provider", cfg.Provider, "model", cfg.Model)

	if cfg.RequestsPerMinute > 0 {
		p = ratelimit.NewRateLimitedProvider(p, ratelimit.NewPerMinute(cfg.RequestsPerMinute))
	}
	if cfg.MaxRetries > 0 {
		p = retry.NewRetryProvider(p, cfg.MaxRetries, cfg.RetryDelay, logger)
	}
	return p, nil
}

// storeSet opens each backing database once, so cache and history can share
// a SQLite file or a Postgres pool.
type storeSet struct {
	sqlite   map[string]*store.SQLiteStore
	postgres map[string]*store.PostgresStore
	redis    []*store.RedisCache
}

func (s *storeSet) openSQLite(path string) (*store.SQLiteStore, error) {
	if st, ok := s.sqlite[path]; ok {
		return st, nil
	}
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if s.sqlite == nil {
		s.sqlite = map[string]*store.SQLiteStore{}
	}
	s.sqlite[path] = st
	return st, nil
}

func (s *storeSet) openPostgres(ctx context.Context, url string) (*store.PostgresStore, error) {
	if st, ok := s.postgres[url]; ok {
		return st, nil
	}
	st, err := store.NewPostgresStore(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if s.postgres == nil {
		s.postgres = map[string]*store.PostgresStore{}
	}
	s.postgres[url] = st
	return st, nil
}

func (s *storeSet) cache(ctx context.Context, cfg config.CacheConfig) (model.CacheStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return s.openSQLite(cfg.Path)
	case config.DriverPostgres:
		return s.openPostgres(ctx, cfg.URL)
	case config.DriverRedis:
		rc, err := store.NewRedisCache(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		s.redis = append(s.redis, rc)
		return rc, nil
	default:
		return nil, nil
	}
}

// historyStore is what the history backends provide on top of model.HistoryStore.
type historyStore interface {
	model.HistoryStore
	store.Pruner
}

func (s *storeSet) history(ctx context.Context, cfg config.HistoryConfig) (historyStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return s.openSQLite(cfg.Path)
	case config.DriverPostgres:
		return s.openPostgres(ctx, cfg.URL)
	default:
		return nil, nil
	}
}

func (s *storeSet) Close() error {
	var errs []error
	for _, st := range s.sqlite {
		errs = append(errs, st.Close())
	}
	for _, st := range s.postgres {
		errs = append(errs, st.Close())
	}
	for _, rc := range s.redis {
		errs = append(errs, rc.Close())
	}
	return errors.Join(errs...)
}
