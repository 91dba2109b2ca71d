package engine

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/util"
)

type baseline struct {
	GeneratedAt  time.Time       `json:"generatedAt"`
	Fingerprints map[string]bool `json:"fingerprints"`
}

// Fingerprint identifies f across runs for baselining.
func Fingerprint(f model.Finding) string {
	return util.Fingerprint(f.RuleID, f.File, f.Line, f.CodeSnippet)
}

// loadBaseline accepts either a bare JSON array of fingerprints or the
// {generatedAt, fingerprints} object form.
func loadBaseline(path string) (baseline, error) {
	var b baseline
	if path == "" {
		return b, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	var fp []string
	if err := json.Unmarshal(data, &fp); err == nil {
		m := make(map[string]bool, len(fp))
		for _, f := range fp {
			m[f] = true
		}
		b.Fingerprints = m
		return b, nil
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, err
	}
	if b.Fingerprints == nil {
		b.Fingerprints = map[string]bool{}
	}
	return b, nil
}

func filterByBaseline(findings []model.Finding, b baseline) []model.Finding {
	if len(b.Fingerprints) == 0 {
		return findings
	}
	var out []model.Finding
	for _, f := range findings {
		if b.Fingerprints[Fingerprint(f)] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func writeBaseline(path string, findings []model.Finding) error {
	if path == "" {
		return nil
	}
	m := make(map[string]bool)
	for _, f := range findings {
		m[Fingerprint(f)] = true
	}
	arr := make([]string, 0, len(m))
	for k := range m {
		arr = append(arr, k)
	}
	sort.Strings(arr)
	data, err := json.MarshalIndent(arr, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
