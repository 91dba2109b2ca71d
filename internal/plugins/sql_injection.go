package plugins

import (
	"regexp"

	"github.com/prathamc00/AI-Code-Reviewer/internal/analysis"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

// An SQL verb, then + or %, then a second SQL keyword, all on one line.
var reSQLConcat = regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE|DROP).*?[+%].*?(WHERE|FROM|INTO|VALUES)`)

// sqlConcatenation flags SQL text assembled with + or % formatting.
type sqlConcatenation struct{}

func (d *sqlConcatenation) Meta() []model.RuleMeta { return []model.RuleMeta{ruleSQLConcat} }

func (d *sqlConcatenation) Scan(fc *analysis.FileContext) {
	text := fc.Unit.Text()
	for _, loc := range reSQLConcat.FindAllStringIndex(text, -1) {
		fc.EmitLine(ruleSQLConcat, fc.Unit.LineForOffset(loc[0]), "Potential SQL injection: SQL query uses string concatenation")
	}
}
