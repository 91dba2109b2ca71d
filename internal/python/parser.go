// Package python turns Python source text into a tree-sitter syntax tree and
// provides the node-shape helpers shared by the rule sets.
package python

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrParse is matched by every *ParseError via errors.Is.
var ErrParse = errors.New("python: syntax error")

// ParseError reports source that is not valid Python. Line is the 1-based
// line of the first ERROR or MISSING node, or 0 when the parser gave up
// without producing a tree.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("python: syntax error at line %d: %s", e.Line, e.Reason)
	}
	return "python: syntax error: " + e.Reason
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Tree is a parsed file. Close must be called once the tree is no longer used.
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node { return t.tree.RootNode() }

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte { return t.src }

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Parse parses src. Each call uses its own tree-sitter parser, so Parse is
// safe for concurrent use.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		tree.Close()
		return nil, &ParseError{Line: line, Reason: "invalid syntax"}
	}
	// The grammar still accepts the Python 2 print and exec statements.
	if legacy := firstLegacyStatement(root); legacy != nil {
		line := StartLine(legacy)
		tree.Close()
		return nil, &ParseError{Line: line, Reason: "Python 2 syntax"}
	}
	return &Tree{tree: tree, src: src}, nil
}

func firstLegacyStatement(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case kindPrintStatement, kindExecStatement:
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil {
			if found := firstLegacyStatement(c); found != nil {
				return found
			}
		}
	}
	return nil
}

func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return StartLine(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !c.HasError() && !c.IsMissing() {
			continue
		}
		if line := firstErrorLine(c); line > 0 {
			return line
		}
	}
	return StartLine(n)
}
