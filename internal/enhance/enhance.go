// Package enhance annotates static findings with an explanation, a
// suggested fix and a 1..5 severity, either from a language model or from
// fixed per-category defaults.
package enhance

import (
	"context"
	"fmt"
	"strings"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

// Enhancer turns findings into enhanced findings, one for one and in order.
type Enhancer interface {
	Enhance(ctx context.Context, findings []model.Finding) []model.EnhancedFinding
}

// Fallback assigns canned text and a severity derived from the category.
type Fallback struct{}

func (Fallback) Enhance(_ context.Context, findings []model.Finding) []model.EnhancedFinding {
	out := make([]model.EnhancedFinding, len(findings))
	for i, f := range findings {
		out[i] = FallbackFor(f)
	}
	return out
}

// DefaultSeverity is the severity used when no model rates a finding.
func DefaultSeverity(c model.Category) int {
	switch c {
	case model.CategorySecurity:
		return 4
	case model.CategoryPerformance:
		return 3
	case model.CategoryCodeQuality:
		return 2
	default:
		return 3
	}
}

func FallbackFor(f model.Finding) model.EnhancedFinding {
	return model.EnhancedFinding{
		Finding:      f,
		Explanation:  fmt.Sprintf("This %s issue was detected by static analysis.", strings.ToLower(f.Category.String())),
		SuggestedFix: "Please review the code and apply appropriate fixes.",
		Severity:     DefaultSeverity(f.Category),
	}
}
