package plugins

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/prathamc00/AI-Code-Reviewer/internal/analysis"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/python"
)

const deepLoopDepth = 3

var blockingCalls = map[string]bool{"sleep": true, "read": true, "write": true, "connect": true}

// performanceRules flags loop nesting, append-building in loops, blocking
// calls inside async functions and nested comprehensions.
type performanceRules struct{}

func (p *performanceRules) Name() string { return "performance" }

func (p *performanceRules) Meta() []model.RuleMeta {
	return []model.RuleMeta{ruleDeepLoop, ruleAppendInLoop, ruleBlockingAsync, ruleNestedComprehension}
}

func (p *performanceRules) Register(w *analysis.Walker, fc *analysis.FileContext) {
	w.On(RuleDeepLoopID, func(n *sitter.Node, st *analysis.State) analysis.Action {
		checkDeepLoop(fc, n, st)
		return analysis.Descend
	}, python.KindFor, python.KindWhile)
	w.On(RuleAppendInLoopID, func(n *sitter.Node, st *analysis.State) analysis.Action {
		if st.LoopDepth == 1 {
			checkAppendInLoop(fc, n)
		}
		return analysis.Descend
	}, python.KindFor)
	w.On(RuleBlockingAsyncID, func(n *sitter.Node, st *analysis.State) analysis.Action {
		if st.InAsync {
			checkBlockingCall(fc, n)
		}
		return analysis.Descend
	}, python.KindCall)
	w.On(RuleNestedComprehensionID, func(n *sitter.Node, _ *analysis.State) analysis.Action {
		if python.NestedComprehension(n) {
			fc.EmitLine(ruleNestedComprehension, python.StartLine(n), "Nested comprehension detected - consider breaking into separate steps for readability")
		}
		return analysis.Descend
	}, python.KindListComp, python.KindSetComp, python.KindDictComp, python.KindGenerator)
}

func checkDeepLoop(fc *analysis.FileContext, n *sitter.Node, st *analysis.State) {
	if st.LoopDepth < deepLoopDepth {
		return
	}
	kind := "loop"
	if n.Type() == python.KindWhile {
		kind = "while loop"
	}
	fc.EmitLine(ruleDeepLoop, python.StartLine(n), fmt.Sprintf("Deeply nested %s (depth %d) may cause performance issues", kind, st.LoopDepth))
}

// checkAppendInLoop reports every X.append(...) in the body of an outermost
// for loop, nested loops included, so each call is reported once.
func checkAppendInLoop(fc *analysis.FileContext, loop *sitter.Node) {
	body := loop.ChildByFieldName("body")
	if body == nil {
		return
	}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == python.KindCall {
			if c, ok := python.CalleeOf(n, fc.Src); ok && c.Qualified && c.Name == "append" {
				fc.EmitLine(ruleAppendInLoop, python.StartLine(n), "List append in loop - consider using list comprehension for better performance")
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil {
				visit(c)
			}
		}
	}
	visit(body)
}

func checkBlockingCall(fc *analysis.FileContext, n *sitter.Node) {
	c, ok := python.CalleeOf(n, fc.Src)
	if !ok {
		return
	}
	switch {
	case c.Qualified && blockingCalls[c.Name] && c.Receiver != "asyncio":
		fc.EmitLine(ruleBlockingAsync, python.StartLine(n), fmt.Sprintf("Blocking call '%s()' in async function - use async version", c.Name))
	case !c.Qualified && c.Name == "sleep":
		fc.EmitLine(ruleBlockingAsync, python.StartLine(n), "Use 'await asyncio.sleep()' instead of 'time.sleep()' in async functions")
	}
}
