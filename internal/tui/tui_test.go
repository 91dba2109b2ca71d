package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

func findings(n int) []model.EnhancedFinding {
	out := make([]model.EnhancedFinding, n)
	for i := range out {
		out[i] = model.EnhancedFinding{
			Finding: model.Finding{
				RuleID:      "SEC-DYNAMIC-EXEC",
				File:        "app.py",
				Line:        i + 1,
				Issue:       "Dangerous function 'eval()' detected - can execute arbitrary code",
				Category:    model.CategorySecurity,
				CodeSnippet: "eval(x)",
				Context:     ">>> eval(x)",
			},
			Explanation:  "eval runs arbitrary code",
			SuggestedFix: "ast.literal_eval(x)",
			Severity:     4,
		}
	}
	return out
}

func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) tea.Model {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
)

func TestCursorMovement(t *testing.T) {
	m := press(t, initialModel(findings(3)), down, down, down, up)
	mt := m.(modelT)
	assert.Equal(t, 1, mt.cursor)

	m = press(t, m, up, up)
	assert.Equal(t, 0, m.(modelT).cursor)
}

func TestViewList(t *testing.T) {
	m := press(t, initialModel(findings(2)), down)
	v := m.View()
	assert.Contains(t, v, "Findings (2)")
	assert.Contains(t, v, "> high     app.py:2")
	assert.Contains(t, v, "  high     app.py:1")
}

func TestViewDetail(t *testing.T) {
	m := press(t, initialModel(findings(2)), enter)
	v := m.View()
	assert.Contains(t, v, "SEC-DYNAMIC-EXEC  app.py:1")
	assert.Contains(t, v, ">>> eval(x)")
	assert.Contains(t, v, "Fix: ast.literal_eval(x)")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.(modelT).detail)
}

func TestViewEmpty(t *testing.T) {
	assert.Contains(t, initialModel(nil).View(), "No issues found.")
}

func TestScrolling(t *testing.T) {
	m, _ := initialModel(findings(30)).Update(tea.WindowSizeMsg{Height: 9})
	for i := 0; i < 10; i++ {
		m = press(t, m, down)
	}
	v := m.View()
	assert.Contains(t, v, "> high     app.py:11")
	assert.NotContains(t, v, "app.py:1 ")
}

func TestQuit(t *testing.T) {
	_, cmd := initialModel(nil).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
