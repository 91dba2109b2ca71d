package analysis

import "github.com/prathamc00/AI-Code-Reviewer/internal/util"

// SourceUnit is one file's path, text and line split, computed once.
// Lines are shared read-only with callers.
type SourceUnit struct {
	path  string
	text  string
	lines []string
}

func NewSourceUnit(path, text string) *SourceUnit {
	return &SourceUnit{path: path, text: text, lines: util.SplitLines(text)}
}

func (u *SourceUnit) Path() string    { return u.path }
func (u *SourceUnit) Text() string    { return u.text }
func (u *SourceUnit) Lines() []string { return u.lines }

// Snippet returns the trimmed text of 1-based line n.
func (u *SourceUnit) Snippet(n int) string { return util.LineContent(u.lines, n) }

// Context returns the 2k+1 line block centred on line n.
func (u *SourceUnit) Context(n, k int) string { return util.CodeContext(u.lines, n, k) }

// LineForOffset maps a byte offset in Text to its 1-based line.
func (u *SourceUnit) LineForOffset(offset int) int { return util.LineForOffset(u.text, offset) }
