package model

import (
	"fmt"
	"time"
)

// Category is the closed set of finding categories.
type Category string

const (
	CategorySecurity    Category = "Security"
	CategoryPerformance Category = "Performance"
	CategoryCodeQuality Category = "Code Quality"
)

// AllCategories returns every category in report order.
func AllCategories() []Category {
	return []Category{CategorySecurity, CategoryPerformance, CategoryCodeQuality}
}

func (c Category) IsValid() bool {
	switch c {
	case CategorySecurity, CategoryPerformance, CategoryCodeQuality:
		return true
	default:
		return false
	}
}

func (c Category) String() string { return string(c) }

// Key returns the snake_case form used in summary statistics.
func (c Category) Key() string {
	switch c {
	case CategorySecurity:
		return "security"
	case CategoryPerformance:
		return "performance"
	case CategoryCodeQuality:
		return "code_quality"
	default:
		return string(c)
	}
}

// ParseCategory accepts the display value ("Code Quality"), the stats key
// ("code_quality") or the compact form ("CodeQuality").
func ParseCategory(s string) (Category, error) {
	switch s {
	case "Security", "security":
		return CategorySecurity, nil
	case "Performance", "performance":
		return CategoryPerformance, nil
	case "Code Quality", "CodeQuality", "code_quality", "codequality":
		return CategoryCodeQuality, nil
	}
	return "", fmt.Errorf("invalid category: %s", s)
}

// Severity bounds used by the enhancement stage.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// ClampSeverity forces s into [MinSeverity, MaxSeverity].
func ClampSeverity(s int) int {
	if s < MinSeverity {
		return MinSeverity
	}
	if s > MaxSeverity {
		return MaxSeverity
	}
	return s
}

// SeverityLabel names a 1..5 severity for summaries.
func SeverityLabel(s int) string {
	switch ClampSeverity(s) {
	case 5:
		return "critical"
	case 4:
		return "high"
	case 3:
		return "medium"
	case 2:
		return "low"
	default:
		return "info"
	}
}

type RuleMeta struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
}

// Finding is a single static-analysis result. It owns all of its strings and
// holds no reference into the syntax tree or line buffer it came from.
type Finding struct {
	RuleID      string   `json:"ruleId"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Issue       string   `json:"issue"`
	Category    Category `json:"category"`
	CodeSnippet string   `json:"code_snippet"`
	Context     string   `json:"context,omitempty"`
}

// EnhancedFinding is a Finding annotated by the enhancement stage.
type EnhancedFinding struct {
	Finding
	Explanation  string `json:"explanation"`
	SuggestedFix string `json:"suggested_fix"`
	Severity     int    `json:"severity"`
}

// ScanRequest describes a directory (or single file) scan.
type ScanRequest struct {
	Path       string
	Baseline   string
	TimeBudget time.Duration
}

type ScanResult struct {
	Findings      []Finding     `json:"findings"`
	FilesAnalyzed int           `json:"filesAnalyzed"`
	ParseFailures []string      `json:"parseFailures,omitempty"`
	Skipped       []string      `json:"skipped,omitempty"`
	Suppressed    int           `json:"suppressed"`
	Elapsed       time.Duration `json:"elapsed"`
}
