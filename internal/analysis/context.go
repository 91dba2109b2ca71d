package analysis

import (
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/util"
)

// FileContext collects the findings of one file's tree-based rule sets.
type FileContext struct {
	Unit         *SourceUnit
	Src          []byte
	ContextLines int

	findings []model.Finding
}

func NewFileContext(unit *SourceUnit, contextLines int) *FileContext {
	if contextLines < 0 {
		contextLines = util.DefaultContextLines
	}
	return &FileContext{Unit: unit, Src: []byte(unit.Text()), ContextLines: contextLines}
}

// Emit records a finding at line with an explicit snippet, used when the
// construct spans several lines (e.g. "def name(...)").
func (c *FileContext) Emit(rule model.RuleMeta, line int, issue, snippet string) {
	c.findings = append(c.findings, NewFinding(c.Unit, rule, line, issue, snippet, c.ContextLines))
}

// EmitLine records a finding whose snippet is the trimmed source line.
func (c *FileContext) EmitLine(rule model.RuleMeta, line int, issue string) {
	c.Emit(rule, line, issue, c.Unit.Snippet(line))
}

// Findings returns the findings in emission order.
func (c *FileContext) Findings() []model.Finding { return c.findings }

// NewFinding builds a finding for unit. Lines below 1 are clamped to 1.
func NewFinding(unit *SourceUnit, rule model.RuleMeta, line int, issue, snippet string, contextLines int) model.Finding {
	if line < 1 {
		line = 1
	}
	return model.Finding{
		RuleID:      rule.ID,
		File:        unit.Path(),
		Line:        line,
		Issue:       issue,
		Category:    rule.Category,
		CodeSnippet: snippet,
		Context:     unit.Context(line, contextLines),
	}
}
