package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

func enhanced(file string, cat model.Category, sev int) model.EnhancedFinding {
	return model.EnhancedFinding{
		Finding: model.Finding{
			RuleID:      "R-" + cat.Key(),
			File:        file,
			Line:        3,
			Issue:       "issue in " + file,
			Category:    cat,
			CodeSnippet: "eval(x)",
		},
		Explanation: "why",
		Severity:    sev,
	}
}

func sample() []model.EnhancedFinding {
	return []model.EnhancedFinding{
		enhanced("a.py", model.CategorySecurity, 5),
		enhanced("a.py", model.CategorySecurity, 4),
		enhanced("b.py", model.CategoryPerformance, 3),
		enhanced("c.py", model.CategoryCodeQuality, 2),
		enhanced("c.py", model.CategoryCodeQuality, 9),
	}
}

func TestCalculateStats(t *testing.T) {
	s := CalculateStats(sample())
	assert.Equal(t, map[string]int{"security": 2, "performance": 1, "code_quality": 2}, s.ByCategory)
	assert.Equal(t, map[string]int{"critical": 1, "high": 1, "medium": 1, "low": 1, "info": 0}, s.BySeverity)
	assert.Equal(t, map[string]int{"a.py": 2, "b.py": 1, "c.py": 2}, s.ByFile)
	assert.Equal(t, 3, s.TotalFilesAnalyzed)
}

func TestCalculateStatsEmpty(t *testing.T) {
	s := CalculateStats(nil)
	assert.Equal(t, 0, s.TotalFilesAnalyzed)
	assert.Len(t, s.ByCategory, 3)
	assert.Len(t, s.BySeverity, 5)
}

func TestNewReviewReport(t *testing.T) {
	r := NewReviewReport("./repo", sample())
	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, r.TotalIssues)
	assert.Equal(t, "./repo", r.Target)
	assert.False(t, r.GeneratedAt.IsZero())

	data, err := json.Marshal(NewReviewReport("x", nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"findings":[]`)
	assert.Contains(t, string(data), `"total_files_analyzed":0`)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, NewReviewReport("x", sample()[:2])))
	out := buf.String()
	assert.Contains(t, out, "Findings: 2 in 1 file(s)")
	assert.Contains(t, out, "- R-security [critical] a.py:3 issue in a.py")
	assert.Contains(t, out, "security=2 performance=0 code_quality=0")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "error", Level(5))
	assert.Equal(t, "error", Level(4))
	assert.Equal(t, "warning", Level(3))
	assert.Equal(t, "note", Level(2))
	assert.Equal(t, "note", Level(1))
}

func TestToSARIF(t *testing.T) {
	rules := []model.RuleMeta{{ID: "R-security", Title: "Security rule", Category: model.CategorySecurity}}
	data, err := ToSARIF(sample()[:3], rules)
	require.NoError(t, err)

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, toolName, run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 1)
	require.Len(t, run.Results, 3)
	assert.Equal(t, []string{"error", "error", "warning"}, []string{run.Results[0].Level, run.Results[1].Level, run.Results[2].Level})
	assert.Equal(t, "b.py", run.Results[2].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 3, run.Results[2].Locations[0].PhysicalLocation.Region.StartLine)
}
