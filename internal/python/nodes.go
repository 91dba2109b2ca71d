package python

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds produced by the tree-sitter Python grammar.
const (
	KindModule              = "module"
	KindFunction            = "function_definition"
	KindClass               = "class_definition"
	KindDecorated           = "decorated_definition"
	KindBlock               = "block"
	KindFor                 = "for_statement"
	KindWhile               = "while_statement"
	KindIf                  = "if_statement"
	KindElif                = "elif_clause"
	KindExcept              = "except_clause"
	KindExceptGroup         = "except_group_clause"
	KindBoolOp              = "boolean_operator"
	KindCall                = "call"
	KindAttribute           = "attribute"
	KindIdentifier          = "identifier"
	KindKeywordArgument     = "keyword_argument"
	KindTrue                = "true"
	KindString              = "string"
	KindConcatenatedString  = "concatenated_string"
	KindInterpolation       = "interpolation"
	KindExpressionStatement = "expression_statement"
	KindComment             = "comment"
	KindListComp            = "list_comprehension"
	KindSetComp             = "set_comprehension"
	KindDictComp            = "dictionary_comprehension"
	KindGenerator           = "generator_expression"
	KindForIn               = "for_in_clause"

	kindPrintStatement = "print_statement"
	kindExecStatement  = "exec_statement"
)

// StartLine returns the 1-based line a node starts on.
func StartLine(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }

// EndLine returns the 1-based line holding the node's last character.
func EndLine(n *sitter.Node) int {
	end := n.EndPoint()
	if end.Column == 0 && end.Row > n.StartPoint().Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}

// Text returns the source text spanned by n.
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

func IsLoop(kind string) bool { return kind == KindFor || kind == KindWhile }

func IsComprehension(kind string) bool {
	switch kind {
	case KindListComp, KindSetComp, KindDictComp, KindGenerator:
		return true
	}
	return false
}

// IsAsyncFunction reports whether n is an "async def".
func IsAsyncFunction(n *sitter.Node) bool {
	if n.Type() != KindFunction || n.ChildCount() == 0 {
		return false
	}
	first := n.Child(0)
	return first != nil && first.Type() == "async"
}

// Name returns the declared name of a function or class definition.
func Name(n *sitter.Node, src []byte) string {
	return Text(n.ChildByFieldName("name"), src)
}

// Unwrap returns the definition inside a decorated_definition, or n itself.
func Unwrap(n *sitter.Node) *sitter.Node {
	if n != nil && n.Type() == KindDecorated {
		if def := n.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return n
}

// Callee describes the function position of a call expression. Receiver is
// only set when the callee is an attribute on a plain name, as in os.system.
type Callee struct {
	Name      string
	Receiver  string
	Qualified bool
}

// CalleeOf decomposes a call node. It returns false for callees that are
// neither a bare name nor an attribute access, e.g. f()() or x[0]().
func CalleeOf(call *sitter.Node, src []byte) (Callee, bool) {
	if call == nil || call.Type() != KindCall {
		return Callee{}, false
	}
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return Callee{}, false
	}
	switch fn.Type() {
	case KindIdentifier:
		return Callee{Name: Text(fn, src)}, true
	case KindAttribute:
		attr := fn.ChildByFieldName("attribute")
		if attr == nil {
			return Callee{}, false
		}
		c := Callee{Name: Text(attr, src), Qualified: true}
		if obj := fn.ChildByFieldName("object"); obj != nil && obj.Type() == KindIdentifier {
			c.Receiver = Text(obj, src)
		}
		return c, true
	}
	return Callee{}, false
}

// KeywordArgument returns the value node of keyword argument name in call.
func KeywordArgument(call *sitter.Node, name string, src []byte) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg == nil || arg.Type() != KindKeywordArgument {
			continue
		}
		if Text(arg.ChildByFieldName("name"), src) == name {
			return arg.ChildByFieldName("value")
		}
	}
	return nil
}

// HasDocstring reports whether a function or class body opens with a plain
// string literal. f-strings and bytes literals do not count.
func HasDocstring(def *sitter.Node, src []byte) bool {
	body := def.ChildByFieldName("body")
	if body == nil {
		return false
	}
	var first *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c != nil && c.Type() != KindComment {
			first = c
			break
		}
	}
	if first == nil || first.Type() != KindExpressionStatement || first.NamedChildCount() != 1 {
		return false
	}
	expr := first.NamedChild(0)
	parts := []*sitter.Node{expr}
	if expr.Type() == KindConcatenatedString {
		parts = parts[:0]
		for i := 0; i < int(expr.NamedChildCount()); i++ {
			if c := expr.NamedChild(i); c != nil && c.Type() != KindComment {
				parts = append(parts, c)
			}
		}
	}
	for _, part := range parts {
		if part == nil || part.Type() != KindString || strings.ContainsAny(stringPrefix(part, src), "bBfF") {
			return false
		}
		for i := 0; i < int(part.NamedChildCount()); i++ {
			if c := part.NamedChild(i); c != nil && c.Type() == KindInterpolation {
				return false
			}
		}
	}
	return len(parts) > 0
}

// stringPrefix returns the letters before a string literal's opening quote,
// e.g. "rb" for rb'x'.
func stringPrefix(n *sitter.Node, src []byte) string {
	text := Text(n, src)
	if i := strings.IndexAny(text, `"'`); i >= 0 {
		return text[:i]
	}
	return ""
}

// PositionalParams counts the parameters that can be passed positionally,
// stopping at the first *args or bare "*".
func PositionalParams(def *sitter.Node) int {
	params := def.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		switch p.Type() {
		case "identifier", "default_parameter", "typed_default_parameter", "tuple_pattern":
			count++
		case "typed_parameter":
			inner := p.NamedChild(0)
			if inner != nil && inner.Type() == "list_splat_pattern" {
				return count
			}
			if inner != nil && inner.Type() == "dictionary_splat_pattern" {
				continue
			}
			count++
		case "list_splat_pattern", "keyword_separator":
			return count
		}
	}
	return count
}

// NestedComprehension reports whether any generator of comprehension n
// iterates directly over another comprehension.
func NestedComprehension(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause == nil || clause.Type() != KindForIn {
			continue
		}
		if src := clause.ChildByFieldName("right"); src != nil && IsComprehension(src.Type()) {
			return true
		}
	}
	return false
}

// IsNameReference reports whether identifier n is used as a variable name,
// as opposed to a declared function/class name, a parameter, an attribute
// or keyword label, or part of an import.
func IsNameReference(n *sitter.Node) bool {
	if n.Type() != KindIdentifier {
		return false
	}
	parent := n.Parent()
	if parent == nil {
		return true
	}
	switch parent.Type() {
	case KindFunction, KindClass:
		return !sameNode(parent.ChildByFieldName("name"), n)
	case KindAttribute:
		return !sameNode(parent.ChildByFieldName("attribute"), n)
	case KindKeywordArgument, "default_parameter", "typed_default_parameter":
		return !sameNode(parent.ChildByFieldName("name"), n)
	case "typed_parameter":
		return !sameNode(parent.NamedChild(0), n)
	case "parameters", "lambda_parameters",
		"dotted_name", "aliased_import", "import_statement", "import_from_statement",
		"global_statement", "nonlocal_statement":
		return false
	case "list_splat_pattern", "dictionary_splat_pattern":
		if gp := parent.Parent(); gp != nil {
			switch gp.Type() {
			case "parameters", "lambda_parameters", "typed_parameter":
				return false
			}
		}
	case "as_pattern_target":
		if gp := parent.Parent(); gp != nil {
			if ggp := gp.Parent(); ggp != nil && (ggp.Type() == KindExcept || ggp.Type() == KindExceptGroup) {
				return false
			}
		}
	case KindExcept, KindExceptGroup:
		if prev := n.PrevSibling(); prev != nil && prev.Type() == "as" {
			return false
		}
	}
	return true
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
