package browse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(16)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	lowMatchStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	midMatchStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	highMatchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// matchStyle colours a skill match percentage by band.
func matchStyle(pct float64) lipgloss.Style {
	switch {
	case pct < 40:
		return lowMatchStyle
	case pct < 70:
		return midMatchStyle
	default:
		return highMatchStyle
	}
}

// FormatMatch renders a percentage the way the list and detail views show it.
func FormatMatch(pct float64) string {
	return matchStyle(pct).Render(fmt.Sprintf("%.2f%%", pct))
}

// RenderResult formats one analysis for a terminal of the given width.
func RenderResult(res model.AnalysisResult, width int) string {
	wrapWidth := max(width-4, 20)
	var b strings.Builder

	divider := func(label string) {
		fill := strings.Repeat("─", max(wrapWidth-lipgloss.Width(label), 3))
		b.WriteString("\n" + dividerStyle.Render(label+fill) + "\n\n")
	}
	bullets := func(items []string) {
		if len(items) == 0 {
			b.WriteString(hintStyle.Render("  (none)") + "\n")
			return
		}
		for _, it := range items {
			b.WriteString("  • " + bodyStyle.Render(wordWrap(it, wrapWidth-4)) + "\n")
		}
	}

	b.WriteString(labelStyle.Render("Skill match"))
	b.WriteString(FormatMatch(res.SkillMatch) + "\n")
	if src, ok := res.RawAI["source"].(string); ok {
		b.WriteString(labelStyle.Render("Source") + src + "\n")
	}

	if res.Summary != "" {
		divider("── Summary ")
		b.WriteString(bodyStyle.Render(wordWrap(res.Summary, wrapWidth)) + "\n")
	}

	divider("── Missing skills ")
	bullets(res.MissingSkills)
	divider("── Strengths ")
	bullets(res.Strengths)
	divider("── Weaknesses ")
	bullets(res.Weaknesses)
	divider("── Suggestions ")
	bullets(res.Suggestions)

	if len(res.LearningResources) > 0 {
		divider("── Learning resources ")
		skills := make([]string, 0, len(res.LearningResources))
		for s := range res.LearningResources {
			skills = append(skills, s)
		}
		slices.Sort(skills)
		for _, s := range skills {
			b.WriteString(labelStyle.Render(s) + "\n")
			set := res.LearningResources[s]
			providers := make([]string, 0, len(set))
			for p := range set {
				providers = append(providers, p)
			}
			slices.Sort(providers)
			for _, p := range providers {
				b.WriteString(fmt.Sprintf("  %-9s %s\n", p, set[p]))
			}
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
