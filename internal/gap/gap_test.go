package gap

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_InputShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want []string
	}{
		{
			name: "comma string",
			raw:  map[string]any{"missing_skills": "Docker, Kubernetes ,  Terraform"},
			want: []string{"Docker", "Kubernetes", "Terraform"},
		},
		{
			name: "newline string wins over commas",
			raw:  map[string]any{"missing_skills": "CI/CD, pipelines\nGraphQL\n\n"},
			want: []string{"CI/CD, pipelines", "GraphQL"},
		},
		{
			name: "list",
			raw:  map[string]any{"missing_skills": []any{" Kafka ", "Redis"}},
			want: []string{"Kafka", "Redis"},
		},
		{
			name: "typed string list",
			raw:  map[string]any{"missing_skills": []string{"Rust", "gRPC"}},
			want: []string{"Rust", "gRPC"},
		},
		{
			name: "absent",
			raw:  map[string]any{"strengths": []any{"Go"}},
			want: []string{},
		},
		{
			name: "nil map",
			raw:  nil,
			want: []string{},
		},
		{
			name: "null value",
			raw:  map[string]any{"missing_skills": nil},
			want: []string{},
		},
		{
			name: "unsupported type",
			raw:  map[string]any{"missing_skills": 42.0},
			want: []string{},
		},
		{
			name: "non-string list items skipped",
			raw:  map[string]any{"missing_skills": []any{"Python", 3.0, nil, map[string]any{"x": 1}, "Spark"}},
			want: []string{"Python", "Spark"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Normalize(tt.raw)
			assert.Equal(t, tt.want, g.MissingSkills)
		})
	}
}

func TestNormalize_DropsShortTokens(t *testing.T) {
	g := Normalize(map[string]any{"missing_skills": "Go, R, ., AWS, C#, SQL"})

	assert.Equal(t, []string{"AWS", "SQL"}, g.MissingSkills)
	for _, s := range g.MissingSkills {
		assert.Greater(t, len([]rune(s)), 2)
	}
}

func TestNormalize_ShortTokenCountsRunes(t *testing.T) {
	// Three runes but more than three bytes.
	g := Normalize(map[string]any{"missing_skills": []any{"日本語"}})
	assert.Equal(t, []string{"日本語"}, g.MissingSkills)
}

func TestNormalize_PreservesDuplicates(t *testing.T) {
	g := Normalize(map[string]any{"missing_skills": []any{"Docker", "Helm", "Docker"}})

	assert.Equal(t, []string{"Docker", "Helm", "Docker"}, g.MissingSkills)
	assert.Len(t, g.LearningResources, 2)
}

func TestNormalize_ResourceKeysMatchSkills(t *testing.T) {
	g := Normalize(map[string]any{"missing_skills": "Machine Learning, C++, Node.js, ab"})

	require.Len(t, g.MissingSkills, 3)
	require.Len(t, g.LearningResources, len(g.MissingSkills))
	for _, skill := range g.MissingSkills {
		rs, ok := g.LearningResources[skill]
		require.True(t, ok, "missing resources for %q", skill)
		assert.Len(t, rs, 3)
		for _, p := range []string{ProviderYouTube, ProviderCoursera, ProviderUdemy} {
			assert.Contains(t, rs, p)
		}
	}
	for key := range g.LearningResources {
		assert.Contains(t, g.MissingSkills, key)
	}
}

func TestNormalize_EmptyResultsAreNonNil(t *testing.T) {
	g := Normalize(nil)
	assert.NotNil(t, g.MissingSkills)
	assert.NotNil(t, g.LearningResources)
}

func TestResources_URLs(t *testing.T) {
	rs := Resources("Machine Learning")

	assert.Equal(t, "https://www.youtube.com/results?search_query=Machine%20Learning%20full%20course%20tutorial", rs[ProviderYouTube])
	assert.Equal(t, "https://www.coursera.org/search?query=Machine%20Learning%20specialization%20Coursera", rs[ProviderCoursera])
	assert.Equal(t, "https://www.udemy.com/courses/search/?q=Machine%20Learning%20masterclass%20Udemy", rs[ProviderUdemy])
}

func TestResources_EncodesPlusAndKeepsSlash(t *testing.T) {
	rs := Resources("C++ CI/CD")

	yt := rs[ProviderYouTube]
	assert.Contains(t, yt, "C%2B%2B%20CI/CD")
	assert.NotContains(t, yt, " ")

	u, err := url.Parse(yt)
	require.NoError(t, err)
	assert.Equal(t, "C++ CI/CD full course tutorial", u.Query().Get("search_query"))
}

func TestResources_RoundTripsSkillName(t *testing.T) {
	params := map[string]string{
		ProviderYouTube:  "search_query",
		ProviderCoursera: "query",
		ProviderUdemy:    "q",
	}
	for _, skill := range []string{"Python", "Data Analysis & Viz", "Node.js", "naïve bayes"} {
		for name, link := range Resources(skill) {
			u, err := url.Parse(link)
			require.NoError(t, err, link)
			assert.True(t, strings.HasPrefix(u.Query().Get(params[name]), skill), "%s: %s", name, link)
		}
	}
}
