package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/analysis"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/browse"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

var (
	resumePath string
	jdPath     string
	jdText     string
	jsonOut    bool
	dryRun     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one resume against a job description",
	Long:  "Runs the same pipeline as POST /analyze_resume/ on a local file and prints the result.",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&resumePath, "resume", "r", "", "resume file (.pdf or .docx)")
	analyzeCmd.Flags().StringVar(&jdPath, "jd", "", "file holding the job description")
	analyzeCmd.Flags().StringVar(&jdText, "jd-text", "", "job description text")
	analyzeCmd.Flags().BoolVar(&jsonOut, "json", false, "print the raw JSON response")
	analyzeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not record the result in history")
	_ = analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsOneRequired("jd", "jd-text")
	analyzeCmd.MarkFlagsMutuallyExclusive("jd", "jd-text")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The spinner owns the terminal; keep logs off it unless asked.
	logger := slog.New(slog.DiscardHandler)
	if debug {
		logger = setupLogger(cfg.Log, true, os.Stderr)
	}

	data, err := os.ReadFile(resumePath)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	jd := jdText
	if jdPath != "" {
		b, err := os.ReadFile(jdPath)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		jd = string(b)
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg, nil, dryRun, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	req := analysis.Request{FileName: filepath.Base(resumePath), Data: data, JobDescription: jd}
	run := func(ctx context.Context) (*model.AnalysisResult, error) {
		return a.pipeline.Analyze(ctx, req)
	}

	var res *model.AnalysisResult
	if jsonOut {
		res, err = run(ctx)
	} else {
		res, err = browse.RunLoader(ctx, "Analyzing "+req.FileName, run)
	}
	if err != nil {
		return reportAnalysisError(cmd.OutOrStdout(), err)
	}

	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), browse.RenderResult(*res, 80))
	return nil
}

// reportAnalysisError prints the model output attached to err, if any, and
// returns err for cobra to report.
func reportAnalysisError(w io.Writer, err error) error {
	var aerr *analysis.Error
	if errors.As(err, &aerr) && aerr.RawAI != nil && jsonOut {
		_ = writeJSON(w, map[string]any{"error": aerr.Message, "raw_ai": aerr.RawAI})
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
