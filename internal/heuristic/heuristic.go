// Package heuristic is the deterministic keyword-overlap scorer used when no
// generative model is configured or reachable.
package heuristic

import (
	"math"
	"regexp"
	"slices"
	"strings"
)

// InsufficientContent replaces the missing list when the resume is too thin to
// evaluate. It means "not enough text", not "zero overlap".
const InsufficientContent = "Add more project and experience details."

// minResumeWords is the word count below which an empty match is reported as
// insufficient content.
const minResumeWords = 50

// minRequired is the smallest requirement set accepted before widening the search.
const minRequired = 3

// DefaultCatalog is the fixed list of known skill phrases, lower-case.
var DefaultCatalog = []string{
	"python", "java", "javascript", "typescript", "react", "sql",
	"aws", "azure", "kubernetes", "git", "html", "css", "c++", "excel",
	"machine learning", "data analysis",
	"communication", "leadership", "teamwork", "problem solving", "project management",
}

// DefaultRequired is used when neither catalog pass yields enough requirements,
// so the percentage is never computed over an empty set.
var DefaultRequired = []string{
	"communication", "teamwork", "problem solving", "project management", "leadership",
}

var wordRe = regexp.MustCompile(`[a-z]+`)

// Result is the outcome of one keyword comparison.
type Result struct {
	SkillMatch float64  // percentage, two decimals
	Required   []string // skills the job description was judged to ask for
	Found      []string
	Missing    []string
}

// Analyzer scores a resume against a job description by keyword overlap.
type Analyzer struct {
	catalog  []string
	defaults []string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCatalog replaces the known skill phrases.
func WithCatalog(skills []string) Option {
	return func(a *Analyzer) { a.catalog = lowerAll(skills) }
}

// WithDefaults replaces the generic fallback requirement set.
func WithDefaults(skills []string) Option {
	return func(a *Analyzer) { a.defaults = lowerAll(skills) }
}

// New returns an Analyzer using DefaultCatalog and DefaultRequired unless overridden.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		catalog:  slices.Clone(DefaultCatalog),
		defaults: slices.Clone(DefaultRequired),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Score compares resumeText against jobDescription.
func (a *Analyzer) Score(resumeText, jobDescription string) Result {
	resume := strings.ToLower(resumeText)
	jd := strings.ToLower(jobDescription)

	required := a.requiredSkills(jd)

	found := []string{}
	missing := []string{}
	for _, skill := range required {
		if strings.Contains(resume, skill) {
			found = append(found, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	match := percent(len(found), len(required))

	if len(found) == 0 && len(strings.Fields(resumeText)) < minResumeWords {
		missing = []string{InsufficientContent}
		match = 0.0
	}

	return Result{
		SkillMatch: match,
		Required:   required,
		Found:      found,
		Missing:    missing,
	}
}

// requiredSkills picks catalog entries related to the job description, widening
// the search twice when fewer than minRequired are found.
func (a *Analyzer) requiredSkills(jd string) []string {
	var words []string
	for _, w := range wordRe.FindAllString(jd, -1) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}

	var required []string
	for _, skill := range a.catalog {
		for _, w := range words {
			if strings.Contains(skill, w) || strings.Contains(w, skill) {
				required = append(required, skill)
				break
			}
		}
	}
	if len(required) >= minRequired {
		return required
	}

	required = required[:0]
	for _, skill := range a.catalog {
		if strings.Contains(jd, skill) {
			required = append(required, skill)
		}
	}
	if len(required) >= minRequired {
		return required
	}

	return append([]string(nil), a.defaults...)
}

// percent returns 100*found/total rounded to two decimals, or 0 when total is 0.
func percent(found, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return math.Round(float64(found)/float64(total)*100*100) / 100
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
