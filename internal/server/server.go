// Package server exposes the resume analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/analysis"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/config"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/metrics"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

// devOrigin is always allowed so a locally served frontend works.
const devOrigin = "http://localhost:3000"

// Analyzer runs a full resume analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*model.AnalysisResult, error)
}

// Assistant is the free-text side of the model: summaries and rewrites.
type Assistant interface {
	Summarize(ctx context.Context, resumeText string) string
	Optimize(ctx context.Context, resumeText, jobDescription, missingSkills string) (string, error)
}

// TrendsSource returns the market trends payload, cached or fresh.
type TrendsSource interface {
	GetTrends(ctx context.Context) model.TrendsPayload
}

// Deps bundles the collaborators behind the HTTP routes.
type Deps struct {
	Analyzer  Analyzer
	Extractor analysis.TextExtractor
	Assistant Assistant
	Trends    TrendsSource
	History   model.HistoryStore // nil disables GET /history
	Metrics   *metrics.Metrics
}

// Server owns the route table and the listener.
type Server struct {
	cfg    config.ServerConfig
	banner string
	deps   Deps
	logger *slog.Logger
}

// New creates a Server. banner is reported by GET / and usually names the model.
func New(cfg config.ServerConfig, banner string, deps Deps, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		banner: banner,
		deps:   deps,
		logger: logger,
	}
}

// Handler returns the full handler chain: routes, metrics, CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", s.deps.Metrics.Middleware("root", http.HandlerFunc(s.handleRoot)))
	s.route(mux, http.MethodGet, "/healthz", "healthz", s.handleHealth)
	s.route(mux, http.MethodPost, "/analyze_resume", "analyze_resume", s.handleAnalyze)
	s.route(mux, http.MethodPost, "/generate_summary", "generate_summary", s.handleSummary)
	s.route(mux, http.MethodGet, "/market_trends", "market_trends", s.handleTrends)
	s.route(mux, http.MethodPost, "/optimize_resume", "optimize_resume", s.handleOptimize)
	s.route(mux, http.MethodGet, "/history", "history", s.handleHistory)
	mux.Handle("GET /metrics", s.deps.Metrics.Handler())

	origins := []string{devOrigin}
	if s.cfg.ClientURL != "" && s.cfg.ClientURL != devOrigin {
		origins = append(origins, s.cfg.ClientURL)
	}
	methods := []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   methods,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

// route registers path with and without a trailing slash, so both
// /analyze_resume and /analyze_resume/ are served.
func (s *Server) route(mux *http.ServeMux, method, path, name string, h http.HandlerFunc) {
	handler := s.deps.Metrics.Middleware(name, h)
	mux.Handle(method+" "+path, handler)
	mux.Handle(method+" "+path+"/{$}", handler)
}

// Run listens on cfg.Addr until ctx is cancelled, then drains in-flight
// requests for at most cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
