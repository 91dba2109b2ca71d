package engine

import (
	"path/filepath"
	"strings"

	"github.com/prathamc00/AI-Code-Reviewer/internal/config"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/util"
)

// suppressWindow is how many lines above a finding an inline marker reaches.
const suppressWindow = 5

// applyIgnores filters findings based on config ignore rules and inline
// suppression markers found in texts.
func applyIgnores(findings []model.Finding, cfg config.Config, texts map[string]string) []model.Finding {
	lines := map[string][]string{}
	var out []model.Finding
	for _, f := range findings {
		if isIgnored(f, cfg) {
			continue
		}
		fl, ok := lines[f.File]
		if !ok {
			fl = util.SplitLines(texts[f.File])
			lines[f.File] = fl
		}
		if hasInlineSuppression(fl, f.RuleID, f.Line) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isIgnored(f model.Finding, cfg config.Config) bool {
	for _, ig := range cfg.Ignore {
		if ig.Rule == "" && ig.Path == "" {
			continue
		}
		if ig.Rule != "" && !strings.EqualFold(ig.Rule, f.RuleID) {
			continue
		}
		if ig.Path != "" {
			if !strings.HasPrefix(filepath.ToSlash(f.File), filepath.ToSlash(ig.Path)) {
				continue
			}
		}
		return true
	}
	return false
}

// hasInlineSuppression looks at the finding's line and the lines above it
// for a comment of the form:
//
//	# reviewer:ignore RULE-ID reason
func hasInlineSuppression(lines []string, ruleID string, line int) bool {
	if len(lines) == 0 || line < 1 {
		return false
	}
	from := max(line-1-suppressWindow, 0)
	to := min(line-1, len(lines)-1)
	needle := "reviewer:ignore " + ruleID
	for i := from; i <= to; i++ {
		idx := strings.Index(lines[i], needle)
		if idx < 0 {
			continue
		}
		// Reject prefixes of a longer rule ID.
		rest := lines[i][idx+len(needle):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == ',' {
			return true
		}
	}
	return false
}
