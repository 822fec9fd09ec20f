package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/browse"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analyses (TUI)",
	Long:  "Lists stored analyses, newest first, in an interactive viewer.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum number of analyses to load")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print records as JSON instead of opening the viewer")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	if a.history == nil {
		return errors.New("history is disabled; set history.driver in the config")
	}
	records, err := a.history.List(ctx, historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		return writeJSON(cmd.OutOrStdout(), records)
	}
	return browse.RunHistoryTUI(records)
}
