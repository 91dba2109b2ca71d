package analysis

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/prathamc00/AI-Code-Reviewer/internal/logging"
	"github.com/prathamc00/AI-Code-Reviewer/internal/python"
)

func parseTree(t *testing.T, src string) *python.Tree {
	t.Helper()
	tree, err := python.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestWalkerLoopDepth(t *testing.T) {
	src := "for a in x:\n" +
		"    while b:\n" +
		"        for c in y:\n" +
		"            pass\n" +
		"for d in z:\n" +
		"    pass\n"
	tree := parseTree(t, src)

	var depths []int
	w := NewWalker(nil)
	w.On("test", func(n *sitter.Node, st *State) Action {
		depths = append(depths, st.LoopDepth)
		return Descend
	}, python.KindFor, python.KindWhile)
	w.Walk(tree.Root())

	assert.Equal(t, []int{1, 2, 3, 1}, depths)
}

func TestWalkerAsyncFlagRestoresOnExit(t *testing.T) {
	src := "async def outer():\n" +
		"    a()\n" +
		"    def inner():\n" +
		"        b()\n" +
		"    c()\n" +
		"d()\n"
	tree := parseTree(t, src)

	seen := map[string]bool{}
	w := NewWalker(nil)
	w.On("test", func(n *sitter.Node, st *State) Action {
		c, ok := python.CalleeOf(n, tree.Source())
		require.True(t, ok)
		seen[c.Name] = st.InAsync
		return Descend
	}, python.KindCall)
	w.Walk(tree.Root())

	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": true, "d": false}, seen)
}

func TestWalkerPreOrderAndSkip(t *testing.T) {
	src := "def f():\n    g()\n\nclass K:\n    def m(self):\n        h()\n"
	tree := parseTree(t, src)

	var order []string
	w := NewWalker(nil)
	w.On("defs", func(n *sitter.Node, st *State) Action {
		order = append(order, n.Type()+":"+python.Name(n, tree.Source()))
		if n.Type() == python.KindClass {
			return SkipChildren
		}
		return Descend
	}, python.KindFunction, python.KindClass)
	w.On("calls", func(n *sitter.Node, st *State) Action {
		order = append(order, "call:"+python.Text(n, tree.Source()))
		return Descend
	}, python.KindCall)
	w.Walk(tree.Root())

	assert.Equal(t, []string{"function_definition:f", "call:g()", "class_definition:K"}, order)
}

func TestWalkerRecoversFromFaults(t *testing.T) {
	tree := parseTree(t, "a()\nb()\n")

	calls := 0
	w := NewWalker(nil)
	w.On("broken", func(n *sitter.Node, st *State) Action {
		var m map[string]int
		m["boom"]++
		return Descend
	}, python.KindCall)
	w.On("counter", func(n *sitter.Node, st *State) Action {
		calls++
		return Descend
	}, python.KindCall)
	w.Walk(tree.Root())

	assert.Equal(t, 2, w.Faults())
	assert.Equal(t, 2, calls)
}

func TestWalkerDefaultsToProcessLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	prev := logging.Logger
	logging.Logger = zap.New(core).Sugar()
	t.Cleanup(func() { logging.Logger = prev })

	tree := parseTree(t, "a()\n")
	w := NewWalker(nil)
	w.On("broken", func(n *sitter.Node, st *State) Action {
		panic("boom")
	}, python.KindCall)
	w.Walk(tree.Root())

	entries := logs.FilterMessage("detector fault").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broken", entries[0].ContextMap()["rule"])
}

func TestFileContextEmit(t *testing.T) {
	unit := NewSourceUnit("m.py", "x = 1\n  y = eval(z)  \nw = 2\n")
	fc := NewFileContext(unit, 1)
	rule := ruleForTest()

	fc.EmitLine(rule, 2, "dangerous")
	fc.Emit(rule, 0, "clamped", "def f(...)")

	got := fc.Findings()
	require.Len(t, got, 2)
	assert.Equal(t, "y = eval(z)", got[0].CodeSnippet)
	assert.Equal(t, "    x = 1\n>>>   y = eval(z)\n    w = 2", got[0].Context)
	assert.Equal(t, "m.py", got[0].File)
	assert.Equal(t, rule.Category, got[0].Category)
	assert.Equal(t, 1, got[1].Line)
	assert.Equal(t, "def f(...)", got[1].CodeSnippet)
}
