package engine

import "github.com/prathamc00/AI-Code-Reviewer/internal/model"

// WriteBaseline records the fingerprints of findings at path so a later
// scan with the same baseline reports only new findings.
func WriteBaseline(path string, findings []model.Finding) error { return writeBaseline(path, findings) }
