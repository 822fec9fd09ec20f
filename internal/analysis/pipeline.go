// Package analysis runs one resume analysis end to end: text extraction,
// model analysis, summary, skill-gap normalization and response assembly.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/ai"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/gap"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/heuristic"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/metrics"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

// Modes accepted by NewPipeline.
const (
	ModeLLM             = "llm"
	ModeHeuristic       = "heuristic"
	ModeLLMWithFallback = "llm_with_fallback"
)

// Result sources, reported in raw_ai and metrics.
const (
	SourceLLM       = "llm"
	SourceHeuristic = "heuristic"
)

// Fixed messages for unusable model output.
const (
	msgParseFailed = "JSON parse failed"
	msgNotObject   = "Analyzer returned unexpected type (expected dict)."
	msgErrorMarker = "Analyzer reported an error."
)

// TextExtractor turns an uploaded document into text.
type TextExtractor interface {
	Extract(data []byte, fileName string) (string, error)
}

// Analyzer is the model-backed part of the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (map[string]any, error)
	Summarize(ctx context.Context, resumeText string) string
}

// Archiver keeps a copy of the uploaded file.
type Archiver interface {
	Archive(ctx context.Context, fileName string, data []byte) (string, error)
}

// Request is one uploaded resume and the job description to compare it with.
type Request struct {
	FileName       string
	Data           []byte
	JobDescription string
}

// Pipeline sequences one analysis. It holds no per-request state and is safe
// for concurrent use when its collaborators are.
type Pipeline struct {
	mode      string
	extractor TextExtractor
	analyzer  Analyzer
	scorer    *heuristic.Analyzer
	history   model.HistoryStore
	archiver  Archiver
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures optional collaborators of a Pipeline.
type Option func(*Pipeline)

// WithHistory appends every successful analysis to h.
func WithHistory(h model.HistoryStore) Option {
	return func(p *Pipeline) { p.history = h }
}

// WithArchiver uploads every parsed resume through a.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) { p.archiver = a }
}

// WithMetrics records analysis outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithScorer replaces the keyword scorer used in heuristic and fallback modes.
func WithScorer(s *heuristic.Analyzer) Option {
	return func(p *Pipeline) { p.scorer = s }
}

// NewPipeline creates a Pipeline. analyzer may be nil in heuristic mode.
func NewPipeline(mode string, extractor TextExtractor, analyzer Analyzer, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Pipeline{
		mode:      mode,
		extractor: extractor,
		analyzer:  analyzer,
		scorer:    heuristic.New(),
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs the pipeline for req. Every failure is an *Error.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*model.AnalysisResult, error) {
	text, err := p.extractor.Extract(req.Data, req.FileName)
	if err != nil {
		p.metrics.RecordAnalysis(p.source(), err)
		return nil, &Error{
			Kind:    KindInput,
			Message: "File parsing error: " + err.Error(),
			Err:     err,
		}
	}
	p.logger.Debug("extracted resume text", "file", req.FileName, "chars", len(text))

	p.archive(ctx, req)

	var result *model.AnalysisResult
	if p.mode == ModeHeuristic {
		result = p.scoreHeuristic(text, req.JobDescription, nil)
	} else {
		result, err = p.analyzeLLM(ctx, text, req.JobDescription)
		var aerr *Error
		if err != nil && p.mode == ModeLLMWithFallback && errors.As(err, &aerr) && aerr.Kind == KindService {
			p.logger.Warn("llm analysis failed, using keyword fallback", "error", err)
			result, err = p.scoreHeuristic(text, req.JobDescription, err), nil
		}
		if err != nil {
			p.metrics.RecordAnalysis(SourceLLM, err)
			return nil, err
		}
	}

	p.metrics.RecordAnalysis(sourceOf(result), nil)
	p.record(ctx, req, result)
	return result, nil
}

func (p *Pipeline) analyzeLLM(ctx context.Context, text, jobDescription string) (*model.AnalysisResult, error) {
	raw, err := p.analyzer.Analyze(ctx, text, jobDescription)
	if err != nil {
		var pe *ai.ParseError
		switch {
		case errors.As(err, &pe):
			return nil, &Error{
				Kind:    KindShape,
				Message: msgParseFailed,
				RawAI:   map[string]any{"error": msgParseFailed, "raw": pe.Raw},
				Err:     err,
			}
		case errors.Is(err, ai.ErrNotObject):
			return nil, &Error{Kind: KindShape, Message: msgNotObject, Err: err}
		default:
			p.logger.Error("llm analysis failed", "error", err)
			return nil, &Error{
				Kind:    KindService,
				Message: err.Error(),
				RawAI:   map[string]any{"error": err.Error()},
				Err:     err,
			}
		}
	}

	if marker, ok := raw["error"]; ok {
		msg := msgErrorMarker
		switch m := marker.(type) {
		case string:
			msg = m
		case nil:
		default:
			msg = fmt.Sprint(m)
		}
		return nil, &Error{Kind: KindShape, Message: msg, RawAI: raw}
	}

	summary := p.analyzer.Summarize(ctx, text)
	g := gap.Normalize(raw)

	raw["summary"] = summary
	raw["missing_skills"] = g.MissingSkills
	raw["learning_resources"] = g.LearningResources

	skillMatch := raw["skill_match_pct"]
	if !model.Truthy(skillMatch) {
		skillMatch = raw["skill_match"]
	}

	return &model.AnalysisResult{
		SkillMatch:        toFloat(skillMatch),
		MissingSkills:     g.MissingSkills,
		Strengths:         toStrings(raw["strengths"]),
		Weaknesses:        toStrings(raw["weaknesses"]),
		Suggestions:       toStrings(raw["suggestions"]),
		LearningResources: g.LearningResources,
		Summary:           summary,
		ResumeText:        text,
		RawAI:             raw,
	}, nil
}

// scoreHeuristic builds a full result from the keyword scorer. reason is the
// model failure that triggered the fallback, nil in heuristic mode.
func (p *Pipeline) scoreHeuristic(text, jobDescription string, reason error) *model.AnalysisResult {
	res := p.scorer.Score(text, jobDescription)
	fb := heuristic.FeedbackFor(res.SkillMatch)

	raw := map[string]any{
		"source":          SourceHeuristic,
		"skill_match_pct": res.SkillMatch,
		"required_skills": res.Required,
		"found_skills":    res.Found,
		"missing_skills":  res.Missing,
	}
	if reason != nil {
		raw["fallback_reason"] = reason.Error()
	}
	g := gap.Normalize(raw)
	raw["missing_skills"] = g.MissingSkills
	raw["learning_resources"] = g.LearningResources

	summary := fmt.Sprintf("Keyword analysis found %d of %d required skills in the resume.",
		len(res.Found), len(res.Required))
	raw["summary"] = summary

	return &model.AnalysisResult{
		SkillMatch:        res.SkillMatch,
		MissingSkills:     g.MissingSkills,
		Strengths:         fb.Strengths,
		Weaknesses:        fb.Weaknesses,
		Suggestions:       fb.Suggestions,
		LearningResources: g.LearningResources,
		Summary:           summary,
		ResumeText:        text,
		RawAI:             raw,
	}
}

func (p *Pipeline) archive(ctx context.Context, req Request) {
	if p.archiver == nil {
		return
	}
	key, err := p.archiver.Archive(ctx, req.FileName, req.Data)
	if err != nil {
		p.logger.Warn("resume archive failed", "file", req.FileName, "error", err)
		return
	}
	p.logger.Debug("resume archived", "key", key)
}

func (p *Pipeline) record(ctx context.Context, req Request, result *model.AnalysisResult) {
	if p.history == nil {
		return
	}
	rec := model.HistoryRecord{
		ID:             p.newID(),
		CreatedAt:      p.now().UTC(),
		FileName:       req.FileName,
		JobDescription: req.JobDescription,
		Result:         *result,
	}
	if err := p.history.Append(ctx, rec); err != nil {
		p.logger.Warn("history append failed", "id", rec.ID, "error", err)
	}
}

func (p *Pipeline) source() string {
	if p.mode == ModeHeuristic {
		return SourceHeuristic
	}
	return SourceLLM
}

func sourceOf(r *model.AnalysisResult) string {
	if s, ok := r.RawAI["source"].(string); ok {
		return s
	}
	return SourceLLM
}

// toFloat coerces a decoded JSON value to a percentage, 0 when it is not numeric.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return finite(x)
	case int:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return finite(f)
	default:
		return 0
	}
}

// finite maps NaN and the infinities to 0; JSON cannot carry them.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// toStrings keeps the string items of a list. A lone string becomes a
// one-item list; anything else is empty.
func toStrings(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, x...)
	case string:
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
