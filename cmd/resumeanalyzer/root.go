package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/config"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "resumeanalyzer",
	Short: "AI resume analyzer",
	Long:  "Scores resumes against job descriptions, reports skill gaps and tracks market skill trends.",
	// `resumeanalyzer` with no subcommand runs the API server.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvConfigPath+" env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// setupLogger builds the slog logger described by cfg. --debug overrides the level.
func setupLogger(cfg config.LogConfig, dbg bool, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if dbg {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// banner is the message served by GET /.
func banner(cfg *config.Config) string {
	if !cfg.Analysis.UsesLLM() && cfg.LLM.APIKey == "" {
		return "Resume Analyzer API (keyword analysis)"
	}
	return fmt.Sprintf("Resume Analyzer API (%s %s)", cfg.LLM.Provider, cfg.LLM.Model)
}
