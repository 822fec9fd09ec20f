package ai

import (
	_ "embed"
	"text/template"
)

var (
	//go:embed prompts/analysis.md
	analysisPromptRaw string
	//go:embed prompts/summary.md
	summaryPromptRaw string
	//go:embed prompts/trends.md
	trendsPromptRaw string
	//go:embed prompts/optimize.md
	optimizePromptRaw string
)

// Prompt templates, parsed once at package init.
var (
	AnalysisTemplate = template.Must(template.New("analysis").Parse(analysisPromptRaw))
	SummaryTemplate  = template.Must(template.New("summary").Parse(summaryPromptRaw))
	TrendsTemplate   = template.Must(template.New("trends").Parse(trendsPromptRaw))
	OptimizeTemplate = template.Must(template.New("optimize").Parse(optimizePromptRaw))
)

// System messages sent ahead of each rendered prompt.
const (
	analysisSystem = "You are an expert HR evaluator. Your output must be ONLY a valid JSON object."
	summarySystem  = "You are an expert recruiter. Your output must be a single, concise paragraph with no conversational filler."
	trendsSystem   = "You are a global tech hiring analyst. Your output must be ONLY a valid JSON array of 10 items."
	optimizeSystem = "You are a professional Resume Editor. Output ONLY the rewritten resume sections in Markdown format."
)
