package report

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

// Stats buckets findings by category key, severity label and file.
type Stats struct {
	ByCategory         map[string]int `json:"by_category"`
	BySeverity         map[string]int `json:"by_severity"`
	ByFile             map[string]int `json:"by_file"`
	TotalFilesAnalyzed int            `json:"total_files_analyzed"`
}

// ReviewReport is the complete output of one review.
type ReviewReport struct {
	ID          string                  `json:"id"`
	Target      string                  `json:"target"`
	TotalIssues int                     `json:"total_issues"`
	Findings    []model.EnhancedFinding `json:"findings"`
	Stats       Stats                   `json:"stats"`
	GeneratedAt time.Time               `json:"generated_at"`
}

func NewReviewReport(target string, findings []model.EnhancedFinding) ReviewReport {
	if findings == nil {
		findings = []model.EnhancedFinding{}
	}
	return ReviewReport{
		ID:          uuid.NewString(),
		Target:      target,
		TotalIssues: len(findings),
		Findings:    findings,
		Stats:       CalculateStats(findings),
		GeneratedAt: time.Now().UTC(),
	}
}

// CalculateStats counts findings. Every category and severity label is
// present even when zero. Severities outside 1..5 are not bucketed.
// TotalFilesAnalyzed counts files with at least one finding.
func CalculateStats(findings []model.EnhancedFinding) Stats {
	s := Stats{
		ByCategory: map[string]int{},
		BySeverity: map[string]int{},
		ByFile:     map[string]int{},
	}
	for _, c := range model.AllCategories() {
		s.ByCategory[c.Key()] = 0
	}
	for sev := model.MinSeverity; sev <= model.MaxSeverity; sev++ {
		s.BySeverity[model.SeverityLabel(sev)] = 0
	}
	for _, f := range findings {
		if f.Category.IsValid() {
			s.ByCategory[f.Category.Key()]++
		}
		if f.Severity >= model.MinSeverity && f.Severity <= model.MaxSeverity {
			s.BySeverity[model.SeverityLabel(f.Severity)]++
		}
		s.ByFile[f.File]++
	}
	s.TotalFilesAnalyzed = len(s.ByFile)
	return s
}

// WriteText prints a human-readable listing.
func WriteText(w io.Writer, r ReviewReport) error {
	if _, err := fmt.Fprintf(w, "Findings: %d in %d file(s)\n", r.TotalIssues, r.Stats.TotalFilesAnalyzed); err != nil {
		return err
	}
	for _, f := range r.Findings {
		if _, err := fmt.Fprintf(w, "- %s [%s] %s:%d %s\n", f.RuleID, model.SeverityLabel(f.Severity), f.File, f.Line, f.Issue); err != nil {
			return err
		}
	}
	c := r.Stats.ByCategory
	_, err := fmt.Fprintf(w, "\nsecurity=%d performance=%d code_quality=%d\n", c["security"], c["performance"], c["code_quality"])
	return err
}
