package heuristic

// Feedback is the fixed commentary attached to a heuristic score.
type Feedback struct {
	Strengths   []string
	Weaknesses  []string
	Suggestions []string
}

// Band thresholds on the skill match percentage.
const (
	lowBand      = 40.0
	moderateBand = 70.0
)

// genericSuggestions does not depend on the input. The keyword scorer has no
// basis for tailored advice.
var genericSuggestions = []string{
	"Quantify achievements with measurable results (numbers, percentages, impact).",
	"Mirror the key terms used in the job description where they honestly apply.",
	"Add a projects section that shows the required tools in real use.",
	"Keep the skills section focused and grouped by category.",
	"Start experience bullet points with strong action verbs.",
}

// FeedbackFor maps a skill match percentage to its band commentary.
func FeedbackFor(skillMatch float64) Feedback {
	var fb Feedback
	switch {
	case skillMatch < lowBand:
		fb.Strengths = []string{"Resume lists some transferable skills."}
		fb.Weaknesses = []string{"Low alignment with the skills required by the job description."}
	case skillMatch < moderateBand:
		fb.Strengths = []string{"Resume covers several of the required skills."}
		fb.Weaknesses = []string{"Moderate alignment; some required skills are not mentioned."}
	default:
		fb.Strengths = []string{"Resume covers most of the required skills."}
		fb.Weaknesses = []string{"Good alignment, add measurable results to stand out."}
	}
	fb.Suggestions = append([]string(nil), genericSuggestions...)
	return fb
}
