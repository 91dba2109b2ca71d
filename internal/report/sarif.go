package report

import (
	"encoding/json"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

const toolName = "ai-code-reviewer"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules,omitempty"`
}
type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
	Properties       sarifProps   `json:"properties"`
}
type sarifProps struct {
	Category string `json:"category"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}
type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}
type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}
type sarifArt struct {
	URI string `json:"uri"`
}
type sarifRegion struct {
	StartLine int          `json:"startLine"`
	Snippet   sarifMessage `json:"snippet"`
}

// Level maps a 1..5 severity to a SARIF result level.
func Level(severity int) string {
	switch {
	case severity >= 4:
		return "error"
	case severity == 3:
		return "warning"
	default:
		return "note"
	}
}

// ToSARIF renders findings as a SARIF 2.1.0 log. rules populates the tool's
// rule table and may be nil.
func ToSARIF(findings []model.EnhancedFinding, rules []model.RuleMeta) ([]byte, error) {
	results := make([]sarifResult, 0, len(findings))
	for _, f := range findings {
		text := f.Issue
		if f.Explanation != "" {
			text += "\n\n" + f.Explanation
		}
		results = append(results, sarifResult{
			RuleID:  f.RuleID,
			Level:   Level(f.Severity),
			Message: sarifMessage{Text: text},
			Locations: []sarifLoc{{Physical: sarifPhys{
				ArtifactLocation: sarifArt{URI: f.File},
				Region:           sarifRegion{StartLine: f.Line, Snippet: sarifMessage{Text: f.CodeSnippet}},
			}}},
		})
	}
	var driverRules []sarifRule
	for _, r := range rules {
		driverRules = append(driverRules, sarifRule{
			ID:               r.ID,
			ShortDescription: sarifMessage{Text: r.Title},
			Properties:       sarifProps{Category: r.Category.String()},
		})
	}
	s := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{{Tool: sarifTool{Driver: sarifDriver{Name: toolName, Rules: driverRules}}, Results: results}},
	}
	return json.MarshalIndent(s, "", "  ")
}
