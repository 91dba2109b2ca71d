package util

import (
	"strings"
	"unicode"
)

// DefaultContextLines is the number of lines shown on each side of a finding.
const DefaultContextLines = 3

const (
	targetPrefix   = ">>> "
	neighborPrefix = "    "
)

// SplitLines splits text on line feeds only; "\r" stays part of the line.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// LineForOffset maps a byte offset to a 1-based line number by counting the
// line feeds that precede it.
func LineForOffset(text string, offset int) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}

// LineContent returns the trimmed text of 1-based line n, or "" when out of range.
func LineContent(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[n-1])
}

// CodeContext returns up to 2k+1 lines centred on 1-based line n. The target
// line is prefixed with ">>> " and its neighbours with four spaces. It returns
// "" when n is outside lines so a context never omits its target.
func CodeContext(lines []string, n, k int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	if k < 0 {
		k = 0
	}
	start := max(0, n-k-1)
	end := min(len(lines), n+k)

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		if i == n-1 {
			b.WriteString(targetPrefix)
		} else {
			b.WriteString(neighborPrefix)
		}
		b.WriteString(strings.TrimRightFunc(lines[i], unicode.IsSpace))
	}
	return b.String()
}
