package engine

import (
	"strings"

	"github.com/prathamc00/AI-Code-Reviewer/internal/config"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

// filterByCategories keeps only findings whose category is listed in
// cfg.Categories when the list is non-empty.
func filterByCategories(findings []model.Finding, cfg config.Config) []model.Finding {
	allowed := cfg.CategorySet()
	if allowed == nil {
		return findings
	}
	var out []model.Finding
	for _, f := range findings {
		if allowed[f.Category] {
			out = append(out, f)
		}
	}
	return out
}

// filterByPlugins keeps only findings whose RuleID is in cfg.Plugins when list is non-empty
func filterByPlugins(findings []model.Finding, cfg config.Config) []model.Finding {
	if len(cfg.Plugins) == 0 {
		return findings
	}
	allowed := map[string]struct{}{}
	for _, id := range cfg.Plugins {
		allowed[strings.ToUpper(strings.TrimSpace(id))] = struct{}{}
	}
	var out []model.Finding
	for _, f := range findings {
		if _, ok := allowed[f.RuleID]; ok {
			out = append(out, f)
		}
	}
	return out
}

// FilterBySeverity drops enhanced findings below threshold. A threshold at
// or below the minimum severity keeps everything.
func FilterBySeverity(findings []model.EnhancedFinding, threshold int) []model.EnhancedFinding {
	if threshold <= model.MinSeverity {
		return findings
	}
	var out []model.EnhancedFinding
	for _, f := range findings {
		if f.Severity >= threshold {
			out = append(out, f)
		}
	}
	return out
}
