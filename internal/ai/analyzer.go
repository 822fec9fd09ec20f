package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/metrics"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

// Input limits applied before prompting, in characters.
const (
	maxResumeChars         = 6000
	maxJobDescriptionChars = 3000
)

// Sampling temperatures per operation.
const (
	analysisTemperature = 0.1
	summaryTemperature  = 0.8
	trendsTemperature   = 0.5
	optimizeTemperature = 0.4
)

// Operation names used in logs and metrics.
const (
	OpAnalysis = "analysis"
	OpSummary  = "summary"
	OpTrends   = "trends"
	OpOptimize = "optimize"
)

// Failsafe values written into an analysis when the model leaves them out.
const (
	defaultWeakness   = "Needs more practical implementation experience"
	defaultSuggestion = "Include measurable results and technical projects"
	defaultMatchPct   = 50
)

// ErrNotObject is returned when the analysis response is valid JSON but not an object.
var ErrNotObject = errors.New("analysis response is not a JSON object")

// ParseError is returned when the analysis response is not valid JSON.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LLMAnalyzer runs every resume-related prompt against an LLMProvider.
type LLMAnalyzer struct {
	provider LLMProvider
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewLLMAnalyzer creates an analyzer. m and logger may be nil.
func NewLLMAnalyzer(provider LLMProvider, m *metrics.Metrics, logger *slog.Logger) *LLMAnalyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LLMAnalyzer{
		provider: provider,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Analyze asks the model for a structured resume-to-job comparison and
// returns the decoded object with failsafe defaults applied.
// Provider failures are returned wrapped; invalid JSON is a *ParseError and
// a non-object value is ErrNotObject.
func (a *LLMAnalyzer) Analyze(ctx context.Context, resumeText, jobDescription string) (map[string]any, error) {
	prompt, err := render(AnalysisTemplate, struct{ Resume, JobDescription string }{
		Resume:         truncate(resumeText, maxResumeChars),
		JobDescription: truncate(jobDescription, maxJobDescriptionChars),
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.complete(ctx, OpAnalysis, Request{
		Messages:    chat(analysisSystem, prompt),
		Temperature: analysisTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	text := StripFences(raw)
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	result, ok := decoded.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	if !model.Truthy(result["weaknesses"]) {
		result["weaknesses"] = []any{defaultWeakness}
	}
	if !model.Truthy(result["suggestions"]) {
		result["suggestions"] = []any{defaultSuggestion}
	}
	if _, ok := result["skill_match_pct"]; !ok {
		result["skill_match_pct"] = float64(defaultMatchPct)
	}
	return result, nil
}

// Summarize writes a recruiter-style paragraph about the resume. It never
// fails: on error the returned text describes the failure.
func (a *LLMAnalyzer) Summarize(ctx context.Context, resumeText string) string {
	prompt, err := render(SummaryTemplate, struct{ Resume string }{
		Resume: truncate(resumeText, maxResumeChars),
	})
	if err == nil {
		var raw string
		raw, err = a.complete(ctx, OpSummary, Request{
			Messages:    chat(summarySystem, prompt),
			Temperature: summaryTemperature,
		})
		if err == nil {
			return strings.TrimSpace(strings.NewReplacer("*", "", "•", "").Replace(raw))
		}
	}
	a.logger.Warn("summary generation failed", "error", err)
	return "Error generating summary: " + err.Error()
}

// GenerateTrends asks the model for the current top ten in-demand skills and
// returns its raw answer.
func (a *LLMAnalyzer) GenerateTrends(ctx context.Context) (string, error) {
	prompt, err := render(TrendsTemplate, struct{ Year int }{Year: a.now().Year()})
	if err != nil {
		return "", err
	}
	return a.complete(ctx, OpTrends, Request{
		Messages:    chat(trendsSystem, prompt),
		Temperature: trendsTemperature,
		JSON:        true,
	})
}

// Optimize rewrites the resume towards the job description and the missing
// skills. The result is returned as plain markdown.
func (a *LLMAnalyzer) Optimize(ctx context.Context, resumeText, jobDescription, missingSkills string) (string, error) {
	prompt, err := render(OptimizeTemplate, struct{ Resume, JobDescription, MissingSkills string }{
		Resume:         resumeText,
		JobDescription: jobDescription,
		MissingSkills:  missingSkills,
	})
	if err != nil {
		return "", err
	}

	raw, err := a.complete(ctx, OpOptimize, Request{
		Messages:    chat(optimizeSystem, prompt),
		Temperature: optimizeTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ReplaceAll(raw, "`markdown`", "")), nil
}

func (a *LLMAnalyzer) complete(ctx context.Context, op string, req Request) (string, error) {
	start := time.Now()
	raw, err := a.provider.Complete(ctx, req)
	a.metrics.ObserveLLMCall(op, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("llm %s: %w", op, err)
	}
	a.logger.Debug("llm call complete", "operation", op, "duration", time.Since(start), "chars", len(raw))
	return raw, nil
}

// StripFences removes a surrounding markdown code fence from LLM output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func chat(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
