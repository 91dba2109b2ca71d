package analysis

import (
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/prathamc00/AI-Code-Reviewer/internal/logging"
	"github.com/prathamc00/AI-Code-Reviewer/internal/python"
)

// State is the traversal-scoped context of one walk. The walker passes it by
// value, so changes made while visiting a node are undone once that node's
// subtree has been walked.
type State struct {
	// LoopDepth counts the enclosing for/while statements, including the
	// node being visited when it is itself a loop.
	LoopDepth int
	// InAsync is true inside the body of the innermost enclosing "async def".
	InAsync bool
}

// Action tells the walker whether to descend into a node's children.
type Action int

const (
	Descend Action = iota
	SkipChildren
)

// Handler is invoked for every node of a registered kind, before its children.
type Handler func(n *sitter.Node, st *State) Action

type handlerEntry struct {
	owner string
	fn    Handler
}

// Walker is a pre-order depth-first traversal dispatching to handlers keyed
// by node kind. Handlers for the same kind run in registration order.
type Walker struct {
	handlers map[string][]handlerEntry
	logger   *zap.SugaredLogger
	faults   int
}

func NewWalker(logger *zap.SugaredLogger) *Walker {
	if logger == nil {
		logger = logging.Logger
	}
	return &Walker{handlers: map[string][]handlerEntry{}, logger: logger}
}

// On registers h for nodes of the given kinds. owner names the rule in fault logs.
func (w *Walker) On(owner string, h Handler, kinds ...string) {
	for _, k := range kinds {
		w.handlers[k] = append(w.handlers[k], handlerEntry{owner: owner, fn: h})
	}
}

// Faults returns how many handler invocations panicked and were abandoned.
func (w *Walker) Faults() int { return w.faults }

// Walk traverses the tree rooted at root with a fresh State.
func (w *Walker) Walk(root *sitter.Node) {
	if root == nil {
		return
	}
	w.walk(root, State{})
}

func (w *Walker) walk(n *sitter.Node, st State) {
	kind := n.Type()
	switch {
	case python.IsLoop(kind):
		st.LoopDepth++
	case kind == python.KindFunction:
		st.InAsync = python.IsAsyncFunction(n)
	}

	descend := true
	for _, h := range w.handlers[kind] {
		if w.dispatch(h, n, &st) == SkipChildren {
			descend = false
		}
	}
	if !descend {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil {
			w.walk(c, st)
		}
	}
}

func (w *Walker) dispatch(h handlerEntry, n *sitter.Node, st *State) (act Action) {
	defer func() {
		if r := recover(); r != nil {
			w.faults++
			w.logger.Warnw("detector fault", "rule", h.owner, "kind", n.Type(), "line", python.StartLine(n), "panic", r)
			act = Descend
		}
	}()
	return h.fn(n, st)
}
