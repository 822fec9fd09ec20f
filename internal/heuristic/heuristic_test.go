package heuristic

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_CatalogMatching(t *testing.T) {
	a := New()
	res := a.Score(
		"Experienced Python developer with AWS and communication skills",
		"Looking for Python, AWS, Docker, and leadership",
	)

	// docker is not a catalog entry; "for" and "and" are not skills
	assert.Equal(t, []string{"python", "aws", "leadership"}, res.Required)
	assert.Equal(t, []string{"python", "aws"}, res.Found)
	assert.Equal(t, []string{"leadership"}, res.Missing)
	assert.Equal(t, 66.67, res.SkillMatch)
	assert.NotContains(t, res.Required, "docker")
}

func TestScore_FullMatch(t *testing.T) {
	a := New()
	res := a.Score(
		"Python engineer on AWS, known for leadership of a small team",
		"Looking for Python, AWS, Docker, and leadership",
	)
	assert.Equal(t, []string{"python", "aws", "leadership"}, res.Found)
	assert.Empty(t, res.Missing)
	assert.Equal(t, 100.0, res.SkillMatch)
}

func TestScore_EmptyRequiredIsZero(t *testing.T) {
	a := New(WithCatalog(nil), WithDefaults(nil))
	res := a.Score(strings.Repeat("word ", 60), "anything at all")
	assert.Empty(t, res.Required)
	assert.Equal(t, 0.0, res.SkillMatch)
}

func TestScore_DegenerateResume(t *testing.T) {
	a := New()
	res := a.Score("Hello there", "We need Python, SQL and Kubernetes experts")
	assert.Equal(t, []string{InsufficientContent}, res.Missing)
	assert.Equal(t, 0.0, res.SkillMatch)
	assert.Empty(t, res.Found)
}

func TestScore_LongResumeWithNoOverlapIsArithmetic(t *testing.T) {
	a := New()
	resume := strings.Repeat("gardening ", 60)
	res := a.Score(resume, "We need Python, SQL and Kubernetes experts")

	// same zero score, but reached through the percentage, not the override
	assert.Equal(t, 0.0, res.SkillMatch)
	assert.Equal(t, []string{"python", "sql", "kubernetes"}, res.Missing)
}

func TestScore_EscapeHatchVerbatim(t *testing.T) {
	// "requirements" contains "r", but one candidate is not enough
	a := New(WithCatalog([]string{"c++", "c#", "r", "python"}))
	res := a.Score(strings.Repeat("x ", 60)+"c++ c# r", "Requirements: C++, C#, R")

	assert.Equal(t, []string{"c++", "c#", "r"}, res.Required)
	assert.Equal(t, []string{"c++", "c#", "r"}, res.Found)
	assert.Equal(t, 100.0, res.SkillMatch)
}

func TestScore_EscapeHatchDefaults(t *testing.T) {
	a := New()
	res := a.Score(
		strings.Repeat("filler ", 40)+"strong communication and teamwork",
		"Barista wanted",
	)
	assert.Equal(t, DefaultRequired, res.Required)
	assert.Equal(t, []string{"communication", "teamwork"}, res.Found)
	assert.Equal(t, 40.0, res.SkillMatch)
}

func TestScore_RequiredNeverEmptyWithDefaults(t *testing.T) {
	a := New()
	for _, jd := range []string{"", "   ", "??", "a b c"} {
		res := a.Score("resume", jd)
		require.NotEmpty(t, res.Required, "jd %q", jd)
	}
}

func TestDefaultCatalog(t *testing.T) {
	assert.GreaterOrEqual(t, len(DefaultCatalog), 15)
	for _, s := range DefaultCatalog {
		assert.Equal(t, strings.ToLower(s), s)
		assert.NotEqual(t, "docker", s)
	}
	assert.Len(t, DefaultRequired, 5)
}

func TestNew_IsolatedFromPackageDefaults(t *testing.T) {
	saved := slices.Clone(DefaultCatalog)
	t.Cleanup(func() { DefaultCatalog = saved })

	a := New()
	DefaultCatalog[0] = "cobol"

	res := a.Score("Experienced Python developer", "Looking for Python, AWS, Docker, and leadership")
	assert.Equal(t, []string{"python", "aws", "leadership"}, res.Required)
}

func TestFeedbackFor(t *testing.T) {
	tests := []struct {
		match float64
		want  string
	}{
		{0, "Low alignment"},
		{39.99, "Low alignment"},
		{40, "Moderate alignment"},
		{69.99, "Moderate alignment"},
		{70, "Good alignment"},
		{100, "Good alignment"},
	}
	for _, tt := range tests {
		fb := FeedbackFor(tt.match)
		require.Len(t, fb.Weaknesses, 1)
		assert.Contains(t, fb.Weaknesses[0], tt.want, "match %v", tt.match)
		assert.Len(t, fb.Suggestions, 5)
		assert.NotEmpty(t, fb.Strengths)
	}
}

func TestFeedbackFor_SuggestionsAreIndependentCopies(t *testing.T) {
	a := FeedbackFor(10)
	a.Suggestions[0] = "changed"
	b := FeedbackFor(90)
	assert.Equal(t, genericSuggestions, b.Suggestions)
	assert.NotEqual(t, "changed", b.Suggestions[0])
}
