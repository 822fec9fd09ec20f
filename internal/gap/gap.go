// Package gap turns the missing-skill field of untrusted model output into a
// clean skill list and synthesizes learning-resource links for each skill.
package gap

import (
	"strings"
	"unicode/utf8"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

// minSkillLen is the shortest token kept. Anything of two characters or fewer
// is treated as noise (stray punctuation, split abbreviations). This is a
// heuristic and not a stop-word list: real two-letter skills such as "Go" or
// "R" are dropped too.
const minSkillLen = 3

// Gap is the normalized skill-gap view of one analysis.
type Gap struct {
	MissingSkills     []string
	LearningResources map[string]model.ResourceSet
}

// Normalize reads raw["missing_skills"] in any of its observed shapes (absent,
// a comma- or newline-delimited string, or a list) and returns the cleaned
// skills in original order with a resource set per skill. Duplicates are kept
// in MissingSkills; LearningResources holds one entry per distinct skill.
// It never fails: unknown shapes produce an empty gap.
func Normalize(raw map[string]any) Gap {
	var v any
	if raw != nil {
		v = raw["missing_skills"]
	}

	cleaned := []string{}
	for _, s := range tokens(v) {
		s = strings.TrimSpace(s)
		if s == "" || utf8.RuneCountInString(s) < minSkillLen {
			continue
		}
		cleaned = append(cleaned, s)
	}

	resources := make(map[string]model.ResourceSet, len(cleaned))
	for _, skill := range cleaned {
		resources[skill] = Resources(skill)
	}

	return Gap{
		MissingSkills:     cleaned,
		LearningResources: resources,
	}
}

// tokens flattens the supported input shapes into raw string tokens.
func tokens(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		sep := ","
		if strings.Contains(t, "\n") {
			sep = "\n"
		}
		return strings.Split(t, sep)
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			// Non-string list items carry no skill name we can trust.
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
