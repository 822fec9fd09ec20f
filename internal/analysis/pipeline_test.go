package analysis

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/ai"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/metrics"
	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract([]byte, string) (string, error) {
	return f.text, f.err
}

type fakeAnalyzer struct {
	raw        map[string]any
	err        error
	summary    string
	summarized int
}

func (f *fakeAnalyzer) Analyze(context.Context, string, string) (map[string]any, error) {
	return f.raw, f.err
}

func (f *fakeAnalyzer) Summarize(context.Context, string) string {
	f.summarized++
	return f.summary
}

type fakeHistory struct {
	records []model.HistoryRecord
	err     error
}

func (f *fakeHistory) Append(_ context.Context, rec model.HistoryRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeHistory) List(context.Context, int) ([]model.HistoryRecord, error) {
	return f.records, nil
}

type fakeArchiver struct {
	names []string
	err   error
}

func (f *fakeArchiver) Archive(_ context.Context, name string, _ []byte) (string, error) {
	f.names = append(f.names, name)
	return "resumes/" + name, f.err
}

const resumeText = "Experienced Python developer with AWS and communication skills"

func request() Request {
	return Request{
		FileName:       "cv.pdf",
		Data:           []byte("%PDF"),
		JobDescription: "Looking for Python, AWS, Docker, and leadership",
	}
}

func newTestPipeline(mode string, ext TextExtractor, an Analyzer, opts ...Option) *Pipeline {
	return NewPipeline(mode, ext, an, slog.New(slog.DiscardHandler), opts...)
}

func requireKind(t *testing.T, err error, want Kind) *Error {
	t.Helper()
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, want, aerr.Kind)
	return aerr
}

func TestAnalyze_LLMSuccess(t *testing.T) {
	an := &fakeAnalyzer{
		raw: map[string]any{
			"skill_match_pct": 72.5,
			"missing_skills":  "Docker, Kubernetes, Go",
			"strengths":       []any{"Python", 3.0, "AWS"},
			"weaknesses":      "No leadership examples",
			"suggestions":     []any{"Quantify impact"},
		},
		summary: "Solid backend engineer.",
	}
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, an)

	res, err := p.Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, 72.5, res.SkillMatch)
	// "Go" is below the minimum skill length
	assert.Equal(t, []string{"Docker", "Kubernetes"}, res.MissingSkills)
	assert.Equal(t, []string{"Python", "AWS"}, res.Strengths)
	assert.Equal(t, []string{"No leadership examples"}, res.Weaknesses)
	assert.Equal(t, []string{"Quantify impact"}, res.Suggestions)
	assert.Len(t, res.LearningResources, 2)
	assert.Contains(t, res.LearningResources, "Docker")
	assert.Equal(t, "Solid backend engineer.", res.Summary)
	assert.Equal(t, resumeText, res.ResumeText)

	assert.Equal(t, "Solid backend engineer.", res.RawAI["summary"])
	assert.Equal(t, res.MissingSkills, res.RawAI["missing_skills"])
	assert.Equal(t, 1, an.summarized)
}

func TestAnalyze_SkillMatchSources(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want float64
	}{
		{"pct wins", map[string]any{"skill_match_pct": 80.0, "skill_match": 10.0}, 80},
		{"zero pct falls through", map[string]any{"skill_match_pct": 0.0, "skill_match": 10.0}, 10},
		{"numeric string", map[string]any{"skill_match_pct": " 64.5 "}, 64.5},
		{"garbage string", map[string]any{"skill_match_pct": "high"}, 0},
		{"neither present", map[string]any{"skill_match_pct": nil}, 0},
		{"bool true", map[string]any{"skill_match": true}, 1},
		{"nan string", map[string]any{"skill_match_pct": "NaN"}, 0},
		{"infinity string", map[string]any{"skill_match_pct": "Infinity"}, 0},
		{"negative inf string", map[string]any{"skill_match_pct": "-Inf"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{raw: tt.raw})
			res, err := p.Analyze(context.Background(), request())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SkillMatch)
		})
	}
}

func TestAnalyze_ListFieldsDefaultEmpty(t *testing.T) {
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{raw: map[string]any{"strengths": 42.0}})

	res, err := p.Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.NotNil(t, res.Strengths)
	assert.Empty(t, res.Strengths)
	assert.NotNil(t, res.MissingSkills)
	assert.Empty(t, res.MissingSkills)
	assert.NotNil(t, res.LearningResources)
}

func TestAnalyze_ExtractionFailure(t *testing.T) {
	an := &fakeAnalyzer{raw: map[string]any{}}
	hist := &fakeHistory{}
	p := newTestPipeline(ModeLLM, &fakeExtractor{err: errors.New("unsupported file format")}, an, WithHistory(hist))

	_, err := p.Analyze(context.Background(), request())
	aerr := requireKind(t, err, KindInput)

	assert.Equal(t, "File parsing error: unsupported file format", aerr.Message)
	assert.Zero(t, an.summarized)
	assert.Empty(t, hist.records)
}

func TestAnalyze_ServiceError(t *testing.T) {
	upstream := &model.HTTPError{StatusCode: 429, Err: errors.New("rate limited")}
	an := &fakeAnalyzer{err: upstream}
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, an)

	_, err := p.Analyze(context.Background(), request())
	aerr := requireKind(t, err, KindService)

	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, map[string]any{"error": aerr.Message}, aerr.RawAI)
	assert.Zero(t, an.summarized)
}

func TestAnalyze_ParseError(t *testing.T) {
	an := &fakeAnalyzer{err: &ai.ParseError{Raw: "not json", Err: errors.New("invalid character")}}
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, an)

	_, err := p.Analyze(context.Background(), request())
	aerr := requireKind(t, err, KindShape)

	assert.Equal(t, "JSON parse failed", aerr.Message)
	assert.Equal(t, map[string]any{"error": "JSON parse failed", "raw": "not json"}, aerr.RawAI)
}

func TestAnalyze_NotObject(t *testing.T) {
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{err: ai.ErrNotObject})

	_, err := p.Analyze(context.Background(), request())
	aerr := requireKind(t, err, KindShape)
	assert.Equal(t, "Analyzer returned unexpected type (expected dict).", aerr.Message)
}

func TestAnalyze_ErrorMarkerShortCircuits(t *testing.T) {
	raw := map[string]any{"error": "model refused", "skill_match_pct": 90.0}
	an := &fakeAnalyzer{raw: raw}
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, an)

	_, err := p.Analyze(context.Background(), request())
	aerr := requireKind(t, err, KindShape)

	assert.Equal(t, "model refused", aerr.Message)
	assert.Equal(t, raw, aerr.RawAI)
	assert.Zero(t, an.summarized)
}

func TestAnalyze_NullErrorMarker(t *testing.T) {
	tests := []struct {
		name   string
		marker any
		want   string
	}{
		{"null", nil, "Analyzer reported an error."},
		{"number", 42.0, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{"error": tt.marker}
			p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{raw: raw})

			_, err := p.Analyze(context.Background(), request())
			aerr := requireKind(t, err, KindShape)

			assert.Equal(t, tt.want, aerr.Message)
			assert.Equal(t, raw, aerr.RawAI)
		})
	}
}

func TestAnalyze_HeuristicMode(t *testing.T) {
	p := newTestPipeline(ModeHeuristic, &fakeExtractor{text: resumeText}, nil)

	res, err := p.Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, 66.67, res.SkillMatch)
	assert.Equal(t, []string{"leadership"}, res.MissingSkills)
	assert.Contains(t, res.LearningResources, "leadership")
	assert.Equal(t, "heuristic", res.RawAI["source"])
	assert.NotContains(t, res.RawAI, "fallback_reason")
	assert.Equal(t, []string{"Resume covers several of the required skills."}, res.Strengths)
	assert.NotEmpty(t, res.Suggestions)
	assert.Contains(t, res.Summary, "2 of 3")
}

func TestAnalyze_FallbackOnServiceError(t *testing.T) {
	an := &fakeAnalyzer{err: errors.New("connection refused")}
	p := newTestPipeline(ModeLLMWithFallback, &fakeExtractor{text: resumeText}, an)

	res, err := p.Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, 66.67, res.SkillMatch)
	assert.Equal(t, "heuristic", res.RawAI["source"])
	assert.Contains(t, res.RawAI["fallback_reason"], "connection refused")
}

func TestAnalyze_NoFallbackOnShapeError(t *testing.T) {
	an := &fakeAnalyzer{err: ai.ErrNotObject}
	p := newTestPipeline(ModeLLMWithFallback, &fakeExtractor{text: resumeText}, an)

	_, err := p.Analyze(context.Background(), request())
	requireKind(t, err, KindShape)
}

func TestAnalyze_RecordsHistory(t *testing.T) {
	hist := &fakeHistory{}
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{raw: map[string]any{"skill_match_pct": 40.0}}, WithHistory(hist))
	p.now = func() time.Time { return at }
	p.newID = func() string { return "rec-1" }

	res, err := p.Analyze(context.Background(), request())
	require.NoError(t, err)

	require.Len(t, hist.records, 1)
	rec := hist.records[0]
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, at, rec.CreatedAt)
	assert.Equal(t, "cv.pdf", rec.FileName)
	assert.Equal(t, request().JobDescription, rec.JobDescription)
	assert.Equal(t, res.SkillMatch, rec.Result.SkillMatch)
}

func TestAnalyze_HistoryFailureIsSwallowed(t *testing.T) {
	hist := &fakeHistory{err: errors.New("disk full")}
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{raw: map[string]any{}}, WithHistory(hist))

	_, err := p.Analyze(context.Background(), request())
	assert.NoError(t, err)
}

func TestAnalyze_ArchiveFailureIsSwallowed(t *testing.T) {
	arch := &fakeArchiver{err: errors.New("bucket gone")}
	p := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{raw: map[string]any{}}, WithArchiver(arch))

	_, err := p.Analyze(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, []string{"cv.pdf"}, arch.names)
}

func TestAnalyze_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)

	ok := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{raw: map[string]any{}}, WithMetrics(m))
	_, err := ok.Analyze(context.Background(), request())
	require.NoError(t, err)

	failing := newTestPipeline(ModeLLM, &fakeExtractor{text: resumeText}, &fakeAnalyzer{err: errors.New("down")}, WithMetrics(m))
	_, err = failing.Analyze(context.Background(), request())
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "resumeanalyzer_analyses_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "input", KindInput.String())
	assert.Equal(t, "service", KindService.String())
	assert.Equal(t, "shape", KindShape.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
