package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// mockProvider is a stub LLMProvider that records the requests it receives.
type mockProvider struct {
	response string
	err      error
	calls    []Request
}

func (m *mockProvider) Complete(_ context.Context, req Request) (string, error) {
	m.calls = append(m.calls, req)
	return m.response, m.err
}

func TestAnalyze_AppliesFailsafes(t *testing.T) {
	p := &mockProvider{response: `{"missing_skills": ["Docker"], "weaknesses": [], "strengths": ["Go"]}`}
	a := NewLLMAnalyzer(p, nil, nil)

	got, err := a.Analyze(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, _ := got["weaknesses"].([]any)
	if len(w) != 1 || w[0] != defaultWeakness {
		t.Errorf("weaknesses = %v, want default", got["weaknesses"])
	}
	s, _ := got["suggestions"].([]any)
	if len(s) != 1 || s[0] != defaultSuggestion {
		t.Errorf("suggestions = %v, want default", got["suggestions"])
	}
	if got["skill_match_pct"] != float64(50) {
		t.Errorf("skill_match_pct = %v, want 50", got["skill_match_pct"])
	}
}

func TestAnalyze_KeepsModelValues(t *testing.T) {
	p := &mockProvider{response: "```json\n{\"skill_match_pct\": 0, \"weaknesses\": [\"x\"], \"suggestions\": [\"y\"]}\n```"}
	a := NewLLMAnalyzer(p, nil, nil)

	got, err := a.Analyze(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a present zero is kept; only a missing key gets the default
	if got["skill_match_pct"] != float64(0) {
		t.Errorf("skill_match_pct = %v, want 0", got["skill_match_pct"])
	}
	if w := got["weaknesses"].([]any); w[0] != "x" {
		t.Errorf("weaknesses = %v", w)
	}
}

func TestAnalyze_SendsJSONRequestWithTruncatedInput(t *testing.T) {
	p := &mockProvider{response: `{}`}
	a := NewLLMAnalyzer(p, nil, nil)

	resume := strings.Repeat("r", maxResumeChars+100)
	jd := strings.Repeat("j", maxJobDescriptionChars+100)
	if _, err := a.Analyze(context.Background(), resume, jd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(p.calls))
	}
	req := p.calls[0]
	if !req.JSON {
		t.Error("expected JSON response hint")
	}
	if req.Temperature != analysisTemperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, analysisTemperature)
	}
	if req.Messages[0].Role != RoleSystem || req.Messages[1].Role != RoleUser {
		t.Errorf("roles = %q, %q", req.Messages[0].Role, req.Messages[1].Role)
	}
	user := req.Messages[1].Content
	if strings.Contains(user, strings.Repeat("r", maxResumeChars+1)) {
		t.Error("resume not truncated")
	}
	if !strings.Contains(user, strings.Repeat("r", maxResumeChars)) {
		t.Error("resume truncated too far")
	}
	if strings.Contains(user, strings.Repeat("j", maxJobDescriptionChars+1)) {
		t.Error("job description not truncated")
	}
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	a := NewLLMAnalyzer(&mockProvider{response: "not json"}, nil, nil)

	_, err := a.Analyze(context.Background(), "resume", "jd")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Raw != "not json" {
		t.Errorf("Raw = %q", pe.Raw)
	}
}

func TestAnalyze_NotAnObject(t *testing.T) {
	a := NewLLMAnalyzer(&mockProvider{response: `["a", "b"]`}, nil, nil)

	_, err := a.Analyze(context.Background(), "resume", "jd")
	if !errors.Is(err, ErrNotObject) {
		t.Fatalf("err = %v, want ErrNotObject", err)
	}
}

func TestAnalyze_ProviderError(t *testing.T) {
	a := NewLLMAnalyzer(&mockProvider{err: errors.New("invalid api key")}, nil, nil)

	_, err := a.Analyze(context.Background(), "resume", "jd")
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("err = %v, want provider error", err)
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		t.Error("provider error must not be a ParseError")
	}
}

func TestSummarize_StripsBullets(t *testing.T) {
	p := &mockProvider{response: "  **Strong** engineer • builds things *fast*  "}
	a := NewLLMAnalyzer(p, nil, nil)

	got := a.Summarize(context.Background(), "resume")
	if got != "Strong engineer  builds things fast" {
		t.Errorf("summary = %q", got)
	}
	if p.calls[0].Temperature != summaryTemperature || p.calls[0].JSON {
		t.Errorf("request = %+v", p.calls[0])
	}
}

func TestSummarize_ErrorBecomesText(t *testing.T) {
	a := NewLLMAnalyzer(&mockProvider{err: errors.New("quota exceeded")}, nil, nil)

	got := a.Summarize(context.Background(), "resume")
	if !strings.HasPrefix(got, "Error generating summary: ") || !strings.Contains(got, "quota exceeded") {
		t.Errorf("summary = %q", got)
	}
}

func TestGenerateTrends_UsesCurrentYear(t *testing.T) {
	p := &mockProvider{response: `["Go"]`}
	a := NewLLMAnalyzer(p, nil, nil)
	a.now = func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) }

	got, err := a.GenerateTrends(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `["Go"]` {
		t.Errorf("got %q", got)
	}
	req := p.calls[0]
	if !strings.Contains(req.Messages[1].Content, "as of 2031") {
		t.Errorf("prompt missing year: %q", req.Messages[1].Content)
	}
	if !req.JSON || req.Temperature != trendsTemperature {
		t.Errorf("request = %+v", req)
	}
}

func TestOptimize_StripsMarkdownMarker(t *testing.T) {
	p := &mockProvider{response: "`markdown`\n## Projects\n- Led X\n"}
	a := NewLLMAnalyzer(p, nil, nil)

	got, err := a.Optimize(context.Background(), "resume body", "jd body", "Docker, Kubernetes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "## Projects\n- Led X" {
		t.Errorf("optimized = %q", got)
	}
	user := p.calls[0].Messages[1].Content
	for _, want := range []string{"resume body", "jd body", "Docker, Kubernetes"} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if p.calls[0].Temperature != optimizeTemperature {
		t.Errorf("temperature = %v", p.calls[0].Temperature)
	}
}

func TestOptimize_ProviderError(t *testing.T) {
	a := NewLLMAnalyzer(&mockProvider{err: errors.New("down")}, nil, nil)
	if _, err := a.Optimize(context.Background(), "r", "j", "m"); err == nil {
		t.Fatal("expected error")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n[1]\n```", "[1]"},
		{"```\n{}\n```", "{}"},
		{"  [\"a\"]  ", `["a"]`},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNopProvider(t *testing.T) {
	_, err := NewNopProvider().Complete(context.Background(), Request{})
	if !errors.Is(err, ErrProviderDisabled) {
		t.Errorf("err = %v, want ErrProviderDisabled", err)
	}
}
