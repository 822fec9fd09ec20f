package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/browse"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

var trendsJSON bool

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Print the current top market skills",
	RunE:  runTrends,
}

func init() {
	trendsCmd.Flags().BoolVar(&trendsJSON, "json", false, "print the raw JSON payload")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.New(slog.DiscardHandler)
	if debug {
		logger = setupLogger(cfg.Log, true, os.Stderr)
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg, nil, false, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var payload model.TrendsPayload
	if trendsJSON {
		payload = a.trends.GetTrends(ctx)
		return writeJSON(cmd.OutOrStdout(), payload)
	}

	payload, err = browse.RunLoader(ctx, "Fetching market trends", func(ctx context.Context) (model.TrendsPayload, error) {
		return a.trends.GetTrends(ctx), nil
	})
	if err != nil {
		return err
	}
	if payload.Error != "" {
		return errors.New(payload.Error)
	}
	for _, s := range payload.TopSkills {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", s.Rank, s.Skill)
	}
	return nil
}
