package plugins

import (
	"github.com/prathamc00/AI-Code-Reviewer/internal/analysis"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

// TextDetector scans raw source text. It runs whether or not the file parses.
type TextDetector interface {
	Meta() []model.RuleMeta
	Scan(fc *analysis.FileContext)
}

// RuleSet is a named group of tree-based detectors for one category.
// Register binds the detectors to fc and installs them on w.
type RuleSet interface {
	Name() string
	Meta() []model.RuleMeta
	Register(w *analysis.Walker, fc *analysis.FileContext)
}

type Registry struct {
	text []TextDetector
	sets []RuleSet
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) RegisterText(d TextDetector) { r.text = append(r.text, d) }
func (r *Registry) RegisterRuleSet(s RuleSet)   { r.sets = append(r.sets, s) }

// RegisterBuiltin installs every built-in detector. Registration order is
// the order findings for the same node are reported in.
func (r *Registry) RegisterBuiltin(th Thresholds) {
	r.RegisterText(&hardcodedSecrets{})
	r.RegisterText(&sqlConcatenation{})
	r.RegisterRuleSet(&securityRules{})
	r.RegisterRuleSet(&performanceRules{})
	r.RegisterRuleSet(&qualityRules{th: th})
}

func (r *Registry) TextDetectors() []TextDetector { return r.text }
func (r *Registry) RuleSets() []RuleSet           { return r.sets }

// Rules lists the metadata of every registered rule.
func (r *Registry) Rules() []model.RuleMeta {
	var out []model.RuleMeta
	for _, d := range r.text {
		out = append(out, d.Meta()...)
	}
	for _, s := range r.sets {
		out = append(out, s.Meta()...)
	}
	return out
}
