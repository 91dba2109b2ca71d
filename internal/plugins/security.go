package plugins

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/prathamc00/AI-Code-Reviewer/internal/analysis"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/python"
)

// securityRules flags dangerous calls: eval/exec, pickle deserialization and
// shell-backed process execution.
type securityRules struct{}

func (s *securityRules) Name() string { return "security" }

func (s *securityRules) Meta() []model.RuleMeta {
	return []model.RuleMeta{ruleDynamicExec, ruleUnsafeDeser, ruleProcessExec}
}

func (s *securityRules) Register(w *analysis.Walker, fc *analysis.FileContext) {
	w.On(RuleDynamicExecID, func(n *sitter.Node, _ *analysis.State) analysis.Action {
		checkDynamicExec(fc, n)
		return analysis.Descend
	}, python.KindCall)
	w.On(RuleUnsafeDeserializeID, func(n *sitter.Node, _ *analysis.State) analysis.Action {
		checkUnsafeDeserialization(fc, n)
		return analysis.Descend
	}, python.KindCall)
	w.On(RuleProcessExecID, func(n *sitter.Node, _ *analysis.State) analysis.Action {
		checkProcessExec(fc, n)
		return analysis.Descend
	}, python.KindCall)
}

func checkDynamicExec(fc *analysis.FileContext, n *sitter.Node) {
	c, ok := python.CalleeOf(n, fc.Src)
	if !ok || c.Qualified {
		return
	}
	if c.Name == "eval" || c.Name == "exec" {
		fc.EmitLine(ruleDynamicExec, python.StartLine(n), fmt.Sprintf("Dangerous function '%s()' detected - can execute arbitrary code", c.Name))
	}
}

// checkUnsafeDeserialization reports pickle.loads(...). A bare loads(...) is
// also reported because "from pickle import loads" cannot be told apart from
// other loads functions by shape alone; expect false positives there.
func checkUnsafeDeserialization(fc *analysis.FileContext, n *sitter.Node) {
	c, ok := python.CalleeOf(n, fc.Src)
	if !ok || c.Name != "loads" {
		return
	}
	switch {
	case c.Qualified && c.Receiver == "pickle":
		fc.EmitLine(ruleUnsafeDeser, python.StartLine(n), "Use of pickle.loads() can execute arbitrary code from untrusted data")
	case !c.Qualified:
		fc.EmitLine(ruleUnsafeDeser, python.StartLine(n), "Unqualified loads() may be pickle.loads() - deserializing untrusted data can execute arbitrary code")
	}
}

var shellCallNames = map[string]bool{"Popen": true, "call": true, "run": true}

func checkProcessExec(fc *analysis.FileContext, n *sitter.Node) {
	c, ok := python.CalleeOf(n, fc.Src)
	if !ok {
		return
	}
	if c.Qualified && c.Receiver == "os" && c.Name == "system" {
		fc.EmitLine(ruleProcessExec, python.StartLine(n), "os.system() is unsafe - use subprocess with proper argument handling")
		return
	}
	if !shellCallNames[c.Name] {
		return
	}
	if v := python.KeywordArgument(n, "shell", fc.Src); v != nil && v.Type() == python.KindTrue {
		fc.EmitLine(ruleProcessExec, python.StartLine(n), "subprocess with shell=True is vulnerable to injection attacks")
	}
}
