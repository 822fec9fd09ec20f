package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/metrics"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/scheduler"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/server"
)

// pruneInterval is how often expired history is removed when history.retention is set.
const pruneInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serve the resume analyzer API; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log, debug, os.Stdout)

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"mode", cfg.Analysis.Mode,
		"provider", cfg.LLM.Provider,
		"cache", cfg.Cache.Driver,
		"history", cfg.History.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg, reg)

	a, err := buildApp(ctx, cfg, m, false, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(cfg.Server, banner(cfg), server.Deps{
		Analyzer:  a.pipeline,
		Extractor: a.extractor,
		Assistant: a.llm,
		Trends:    a.trends,
		History:   a.history,
		Metrics:   m,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })

	for _, sched := range backgroundJobs(a) {
		g.Go(func() error { return sched.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	logger.Info("goodbye")
	return nil
}

// backgroundJobs returns the schedulers enabled by config: the trends warmer
// and the history pruner.
func backgroundJobs(a *app) []*scheduler.Scheduler {
	var jobs []*scheduler.Scheduler

	if a.cfg.Cache.WarmInterval > 0 {
		warm := scheduler.Task{Name: "warm_trends", Run: func(ctx context.Context) error {
			if p := a.trends.GetTrends(ctx); p.Error != "" {
				a.logger.Warn("trends warm-up failed", "error", p.Error)
			}
			return nil
		}}
		jobs = append(jobs, scheduler.NewScheduler([]scheduler.Task{warm}, a.cfg.Cache.WarmInterval, a.logger))
	}

	if a.cfg.History.Retention > 0 && a.history != nil {
		pruner, ok := a.history.(historyStore)
		if ok {
			retention := a.cfg.History.Retention
			prune := scheduler.Task{Name: "prune_history", Run: func(ctx context.Context) error {
				n, err := pruner.Prune(ctx, retention)
				if err != nil {
					return err
				}
				if n > 0 {
					a.logger.Info("pruned analysis history", "removed", n, "retention", retention.String())
				}
				return nil
			}}
			jobs = append(jobs, scheduler.NewScheduler([]scheduler.Task{prune}, pruneInterval, a.logger))
		}
	}
	return jobs
}
