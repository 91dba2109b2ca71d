package plugins

import (
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/prathamc00/AI-Code-Reviewer/internal/analysis"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/python"
)

var allowedShortNames = map[string]bool{"i": true, "j": true, "k": true, "x": true, "y": true, "z": true, "_": true}

// qualityRules checks function and class shape plus short identifiers.
type qualityRules struct {
	th Thresholds
}

func (q *qualityRules) Name() string { return "quality" }

func (q *qualityRules) Meta() []model.RuleMeta {
	return []model.RuleMeta{
		ruleFunctionLength, ruleMissingDocstring, ruleTooManyParams,
		ruleComplexity, ruleTooManyMethods, ruleShortName,
	}
}

func (q *qualityRules) Register(w *analysis.Walker, fc *analysis.FileContext) {
	th := q.th
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	w.On("quality.function", func(n *sitter.Node, _ *analysis.State) analysis.Action {
		checkFunction(fc, n, th)
		return analysis.Descend
	}, python.KindFunction)
	w.On("quality.class", func(n *sitter.Node, _ *analysis.State) analysis.Action {
		checkClass(fc, n, th)
		return analysis.Descend
	}, python.KindClass)
	w.On(RuleShortNameID, func(n *sitter.Node, _ *analysis.State) analysis.Action {
		checkShortName(fc, n)
		return analysis.Descend
	}, python.KindIdentifier)
}

func functionSnippet(n *sitter.Node, name string) string {
	if python.IsAsyncFunction(n) {
		return "async def " + name + "(...)"
	}
	return "def " + name + "(...)"
}

func checkFunction(fc *analysis.FileContext, n *sitter.Node, th Thresholds) {
	name := python.Name(n, fc.Src)
	line := python.StartLine(n)
	snippet := functionSnippet(n, name)

	if length := python.EndLine(n) - line; length > th.FunctionLength {
		fc.Emit(ruleFunctionLength, line, fmt.Sprintf("Function '%s' is too long (%d lines) - consider breaking it down", name, length), snippet)
	}
	if !strings.HasPrefix(name, "_") && !python.HasDocstring(n, fc.Src) {
		fc.Emit(ruleMissingDocstring, line, fmt.Sprintf("Function '%s' is missing a docstring", name), snippet)
	}
	if params := python.PositionalParams(n); params > th.Parameters {
		fc.Emit(ruleTooManyParams, line, fmt.Sprintf("Function '%s' has too many parameters (%d) - consider using a config object", name, params), snippet)
	}
	if cc := Complexity(n); cc > th.Complexity {
		fc.Emit(ruleComplexity, line, fmt.Sprintf("Function '%s' has high cyclomatic complexity (%d) - consider simplifying", name, cc), snippet)
	}
}

func checkClass(fc *analysis.FileContext, n *sitter.Node, th Thresholds) {
	name := python.Name(n, fc.Src)
	line := python.StartLine(n)
	snippet := "class " + name + ":"

	if !strings.HasPrefix(name, "_") && !python.HasDocstring(n, fc.Src) {
		fc.Emit(ruleMissingDocstring, line, fmt.Sprintf("Class '%s' is missing a docstring", name), snippet)
	}
	if methods := countMethods(n); methods > th.Methods {
		fc.Emit(ruleTooManyMethods, line, fmt.Sprintf("Class '%s' has too many methods (%d) - consider splitting into multiple classes", name, methods), snippet)
	}
}

// countMethods counts function definitions directly in the class body,
// decorated ones included.
func countMethods(class *sitter.Node) int {
	body := class.ChildByFieldName("body")
	if body == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := python.Unwrap(body.NamedChild(i))
		if c != nil && c.Type() == python.KindFunction {
			count++
		}
	}
	return count
}

func checkShortName(fc *analysis.FileContext, n *sitter.Node) {
	if !python.IsNameReference(n) {
		return
	}
	name := python.Text(n, fc.Src)
	if utf8.RuneCountInString(name) != 1 || allowedShortNames[name] {
		return
	}
	fc.EmitLine(ruleShortName, python.StartLine(n), fmt.Sprintf("Single-letter variable name '%s' - use descriptive names", name))
}

// Complexity returns 1 plus the number of branch points under n: if/elif,
// for, while and exception handlers, plus one per extra boolean operand.
// Nested definitions are included.
func Complexity(n *sitter.Node) int {
	return 1 + branchPoints(n)
}

func branchPoints(n *sitter.Node) int {
	total := 0
	switch n.Type() {
	case python.KindIf, python.KindElif, python.KindFor, python.KindWhile,
		python.KindExcept, python.KindExceptGroup:
		total++
	case python.KindBoolOp:
		// "a and b and c" nests as two binary nodes; each adds one.
		total++
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil {
			total += branchPoints(c)
		}
	}
	return total
}
