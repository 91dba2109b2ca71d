package plugins

import (
	"regexp"

	"github.com/prathamc00/AI-Code-Reviewer/internal/analysis"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

type secretPattern struct {
	re      *regexp.Regexp
	message string
}

// Key names match case-insensitively; the AWS key body must be upper-case.
var secretPatterns = []secretPattern{
	{regexp.MustCompile(`(?i:api[_-]?key)\s*=\s*["']([A-Za-z0-9_-]{20,})["']`), "Hardcoded API key detected"},
	{regexp.MustCompile(`(?i:password)\s*=\s*["'](.{3,})["']`), "Hardcoded password detected"},
	{regexp.MustCompile(`(?i:secret[_-]?key)\s*=\s*["'](.{10,})["']`), "Hardcoded secret key detected"},
	{regexp.MustCompile(`(?i:token)\s*=\s*["']([A-Za-z0-9_-]{20,})["']`), "Hardcoded token detected"},
	{regexp.MustCompile(`(?i:aws[_-]?access[_-]?key[_-]?id)\s*=\s*["']([A-Z0-9]{20})["']`), "Hardcoded AWS access key detected"},
}

// hardcodedSecrets flags credentials assigned from string literals.
type hardcodedSecrets struct{}

func (d *hardcodedSecrets) Meta() []model.RuleMeta { return []model.RuleMeta{ruleHardcodedSecret} }

func (d *hardcodedSecrets) Scan(fc *analysis.FileContext) {
	text := fc.Unit.Text()
	for _, p := range secretPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			fc.EmitLine(ruleHardcodedSecret, fc.Unit.LineForOffset(loc[0]), p.message)
		}
	}
}
