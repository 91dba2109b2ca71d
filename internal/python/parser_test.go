package python

import (
	"context"
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

// find returns the nodes of the given kind in pre-order.
func find(n *sitter.Node, kind string) []*sitter.Node {
	var out []*sitter.Node
	if n.Type() == kind {
		out = append(out, n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, find(n.NamedChild(i), kind)...)
	}
	return out
}

func TestParseValid(t *testing.T) {
	tree := parse(t, "def f(a):\n    return a\n")
	assert.Equal(t, KindModule, tree.Root().Type())
	assert.Len(t, find(tree.Root(), KindFunction), 1)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"broken def", "x = 1\ndef broken(:\n    pass\n", 0},
		{"print statement", "x = 1\nprint \"x\"\n", 2},
		{"nested print statement", "def f():\n    if x:\n        print x, y\n", 3},
		{"exec statement", "exec \"code\"\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.GreaterOrEqual(t, perr.Line, 1)
			if tt.line > 0 {
				assert.Equal(t, tt.line, perr.Line)
				assert.Equal(t, "Python 2 syntax", perr.Reason)
			}
			assert.Contains(t, perr.Error(), "syntax error")
		})
	}
}

func TestParsePython3Builtins(t *testing.T) {
	tree := parse(t, "print(\"x\")\nexec(code)\nprint(a, b, sep=\",\")\n")
	assert.Len(t, find(tree.Root(), KindCall), 3)
}

func TestLines(t *testing.T) {
	tree := parse(t, "x = 1\n\ndef f():\n    a = 1\n    return a\n")
	fn := find(tree.Root(), KindFunction)[0]
	assert.Equal(t, 3, StartLine(fn))
	assert.Equal(t, 5, EndLine(fn))
}

func TestIsAsyncFunction(t *testing.T) {
	tree := parse(t, "async def a():\n    pass\n\ndef b():\n    pass\n")
	fns := find(tree.Root(), KindFunction)
	require.Len(t, fns, 2)
	assert.True(t, IsAsyncFunction(fns[0]))
	assert.False(t, IsAsyncFunction(fns[1]))
	assert.Equal(t, "a", Name(fns[0], tree.Source()))
}

func TestCalleeOf(t *testing.T) {
	tree := parse(t, "eval(x)\nos.system(cmd)\nself.db.run(q)\nfactory()()\n")
	calls := find(tree.Root(), KindCall)
	src := tree.Source()

	c, ok := CalleeOf(calls[0], src)
	require.True(t, ok)
	assert.Equal(t, Callee{Name: "eval"}, c)

	c, ok = CalleeOf(calls[1], src)
	require.True(t, ok)
	assert.Equal(t, Callee{Name: "system", Receiver: "os", Qualified: true}, c)

	c, ok = CalleeOf(calls[2], src)
	require.True(t, ok)
	assert.Equal(t, Callee{Name: "run", Qualified: true}, c)

	// factory()() is an outer call whose function is itself a call.
	_, ok = CalleeOf(calls[3], src)
	assert.False(t, ok)
}

func TestKeywordArgument(t *testing.T) {
	tree := parse(t, "subprocess.run(cmd, shell=True, check=False)\n")
	call := find(tree.Root(), KindCall)[0]
	src := tree.Source()

	shell := KeywordArgument(call, "shell", src)
	require.NotNil(t, shell)
	assert.Equal(t, KindTrue, shell.Type())
	assert.Nil(t, KeywordArgument(call, "cwd", src))
}

func TestHasDocstring(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"plain", "def f():\n    \"\"\"Doc.\"\"\"\n    return 1\n", true},
		{"after comment", "def f():\n    # note\n    'doc'\n", true},
		{"none", "def f():\n    return 1\n", false},
		{"fstring", "def f():\n    f\"{x}\"\n", false},
		{"string not first", "def f():\n    x = 1\n    'late'\n", false},
		{"raw string", "def f():\n    r\"\"\"Doc.\"\"\"\n", true},
		{"concatenated", "def f():\n    \"a\" \"b\"\n", true},
		{"bytes", "def f():\n    b\"not a docstring\"\n", false},
		{"raw bytes", "def f():\n    Rb'x'\n", false},
		{"fstring without fields", "def f():\n    f'plain'\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.src)
			fn := find(tree.Root(), KindFunction)[0]
			assert.Equal(t, tt.want, HasDocstring(fn, tree.Source()))
		})
	}
}

func TestPositionalParams(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"def f():\n    pass\n", 0},
		{"def f(a, b, c=1):\n    pass\n", 3},
		{"def f(self, a: int, b: str = 'x'):\n    pass\n", 3},
		{"def f(a, *args, b, c):\n    pass\n", 1},
		{"def f(a, *, b, c):\n    pass\n", 1},
		{"def f(a, b, **kw):\n    pass\n", 2},
	}
	for _, tt := range tests {
		tree := parse(t, tt.src)
		fn := find(tree.Root(), KindFunction)[0]
		assert.Equal(t, tt.want, PositionalParams(fn), tt.src)
	}
}

func TestNestedComprehension(t *testing.T) {
	tree := parse(t, "a = [x for x in [y for y in ys]]\nb = [x for x in xs]\n")
	comps := find(tree.Root(), KindListComp)
	require.Len(t, comps, 3)
	assert.True(t, NestedComprehension(comps[0]))
	assert.False(t, NestedComprehension(comps[1]))
	assert.False(t, NestedComprehension(comps[2]))
}

func TestIsNameReference(t *testing.T) {
	src := "import os as o\n" +
		"def f(p, q=1):\n" +
		"    v = p.attr\n" +
		"    g(key=v)\n"
	tree := parse(t, src)
	refs := map[string]bool{}
	for _, id := range find(tree.Root(), KindIdentifier) {
		name := Text(id, tree.Source())
		refs[name] = refs[name] || IsNameReference(id)
	}
	assert.False(t, refs["os"])
	assert.False(t, refs["o"])
	assert.False(t, refs["f"])
	assert.True(t, refs["p"], "p is read in the body")
	assert.False(t, refs["q"])
	assert.True(t, refs["v"])
	assert.False(t, refs["attr"])
	assert.False(t, refs["key"])
	assert.True(t, refs["g"])
}
