package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

type modelT struct {
	findings []model.EnhancedFinding
	cursor   int
	detail   bool
	height   int
}

func initialModel(findings []model.EnhancedFinding) modelT {
	return modelT{findings: findings, height: 20}
}

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Height > 4 {
			m.height = msg.Height - 4
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.findings)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.detail = !m.detail
		case "esc":
			m.detail = false
		}
	}
	return m, nil
}

func (m modelT) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Findings (%d)  up/down move, enter details, q quit\n\n", len(m.findings))
	if len(m.findings) == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}
	if m.detail {
		writeDetail(&b, m.findings[m.cursor])
		return b.String()
	}
	start := 0
	if m.cursor >= m.height {
		start = m.cursor - m.height + 1
	}
	end := min(start+m.height, len(m.findings))
	for i := start; i < end; i++ {
		f := m.findings[i]
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		fmt.Fprintf(&b, "%s%-8s %s:%d %s\n", prefix, model.SeverityLabel(f.Severity), f.File, f.Line, f.Issue)
	}
	return b.String()
}

func writeDetail(b *strings.Builder, f model.EnhancedFinding) {
	fmt.Fprintf(b, "%s  %s:%d  [%s, %s]\n\n", f.RuleID, f.File, f.Line, f.Category, model.SeverityLabel(f.Severity))
	fmt.Fprintf(b, "%s\n\n", f.Issue)
	if f.Context != "" {
		fmt.Fprintf(b, "%s\n\n", f.Context)
	} else {
		fmt.Fprintf(b, "    %s\n\n", f.CodeSnippet)
	}
	if f.Explanation != "" {
		fmt.Fprintf(b, "Why: %s\n", f.Explanation)
	}
	if f.SuggestedFix != "" {
		fmt.Fprintf(b, "Fix: %s\n", f.SuggestedFix)
	}
}

// Run launches the interactive finding browser.
func Run(findings []model.EnhancedFinding) error {
	p := tea.NewProgram(initialModel(findings))
	_, err := p.Run()
	return err
}
