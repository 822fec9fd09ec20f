// Package browse holds the terminal UI: an inline spinner for long calls and
// an interactive viewer over the analysis history.
package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/model"
)

// Lines per record in the list view (title + subtitle + blank separator).
const recordItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)
)

type historyModel struct {
	records  []model.HistoryRecord
	list     viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
	loc      *time.Location
	view     viewState
	detail   viewport.Model
	showJD   bool
	showText bool
}

func newHistoryModel(records []model.HistoryRecord, loc *time.Location) historyModel {
	if loc == nil {
		loc = time.Local
	}
	return historyModel{records: records, loc: loc}
}

func (m historyModel) Init() tea.Cmd {
	return nil
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detail.Width = m.width - 4
			m.detail.Height = m.height - 4
			m.detail.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}
	return m, nil
}

func (m historyModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		return m.openDetailView(), nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m historyModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "d":
		m.showJD = !m.showJD
		m.detail.SetContent(m.renderDetail())
		return m, nil
	case "t":
		m.showText = !m.showText
		m.detail.SetContent(m.renderDetail())
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *historyModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.records)-1, 0))
	m.list.SetContent(m.renderList())

	top := m.cursor * recordItemHeight
	bottom := top + recordItemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m historyModel) openDetailView() historyModel {
	if len(m.records) == 0 {
		return m
	}
	m.view = viewDetail
	m.showJD = false
	m.showText = false
	m.detail = viewport.New(m.width-4, m.height-4)
	m.detail.SetContent(m.renderDetail())
	return m
}

func (m *historyModel) recalcLayout() {
	// header (1) + border top/bottom (2) + status bar (1)
	w := max(m.width-2, 20)
	h := max(m.height-4, 5)
	if !m.ready {
		m.list = viewport.New(w, h)
		m.ready = true
	} else {
		m.list.Width = w
		m.list.Height = h
	}
	m.list.SetContent(m.renderList())
}

func (m historyModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m historyModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf("Analysis history (%d)", len(m.records)))
	pane := borderStyle.Width(m.list.Width).Render(m.list.View())
	status := statusBarStyle.Width(m.width).Render(" ↑/↓ cursor  Enter detail  q quit")
	return header + "\n" + pane + "\n" + status
}

func (m historyModel) viewDetail() string {
	rec := m.records[m.cursor]
	title := detailTitleStyle.Render(rec.FileName)
	content := borderStyle.Width(m.width - 2).Render(m.detail.View())
	status := statusBarStyle.Width(m.width).Render(" d job description  t resume text  esc back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + status
}

func (m historyModel) renderList() string {
	if len(m.records) == 0 {
		return "  (no analyses yet)"
	}

	var b strings.Builder
	for i, rec := range m.records {
		ts, ss, prefix := titleStyle, subtitleStyle, "  "
		if i == m.cursor {
			ts, ss, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(ts.Render(rec.FileName))
		b.WriteString("  " + FormatMatch(rec.Result.SkillMatch))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(ss.Render(fmt.Sprintf("%s · %s",
			rec.CreatedAt.In(m.loc).Format("2006-01-02 15:04"), firstLine(rec.JobDescription, 60))))
		b.WriteByte('\n')

		if i < len(m.records)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m historyModel) renderDetail() string {
	rec := m.records[m.cursor]
	wrapWidth := max(m.width-8, 20)

	var b strings.Builder
	b.WriteString(labelStyle.Render("Analyzed at") + rec.CreatedAt.In(m.loc).Format("2006-01-02 15:04 MST") + "\n")
	b.WriteString(labelStyle.Render("Record") + rec.ID + "\n\n")
	b.WriteString(RenderResult(rec.Result, m.width-4))

	b.WriteByte('\n')
	if m.showJD {
		b.WriteString(dividerStyle.Render("── Job description ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(rec.JobDescription, wrapWidth)) + "\n")
	} else {
		b.WriteString(hintStyle.Render("  press d to read the job description") + "\n")
	}
	if m.showText {
		b.WriteString("\n" + dividerStyle.Render("── Resume text ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(rec.Result.ResumeText, wrapWidth)) + "\n")
	} else if rec.Result.ResumeText != "" {
		b.WriteString(hintStyle.Render("  press t to read the extracted resume text") + "\n")
	}
	return b.String()
}

// firstLine returns the first line of s cut to n runes.
func firstLine(s string, n int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

// RunHistoryTUI shows records, newest first, in a full-screen browser.
func RunHistoryTUI(records []model.HistoryRecord) error {
	p := tea.NewProgram(newHistoryModel(records, nil), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
