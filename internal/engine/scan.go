package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

// Directories never descended into during discovery.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, "__pycache__": true,
	".venv": true, "venv": true, "node_modules": true, ".tox": true, ".mypy_cache": true,
}

// Scan analyses every source file under req.Path and applies config ignores,
// inline suppressions, the rule and category allow-lists and the baseline.
func (e *Engine) Scan(ctx context.Context, req model.ScanRequest) (*model.ScanResult, error) {
	start := time.Now()
	budget := req.TimeBudget
	if budget == 0 && e.cfg.TimeBudgetMs > 0 {
		budget = time.Duration(e.cfg.TimeBudgetMs) * time.Millisecond
	}
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	files, err := discoverFiles(req.Path, e.cfg.Extensions)
	if err != nil {
		return nil, err
	}
	texts := make(map[string]string, len(files))
	for name, path := range files {
		b, err := os.ReadFile(path)
		if err != nil {
			e.logger.Warnw("skipping unreadable file", "file", path, "error", err)
			continue
		}
		if !utf8.Valid(b) {
			e.logger.Warnw("skipping non UTF-8 file", "file", path)
			continue
		}
		texts[name] = string(b)
	}

	res := &model.ScanResult{}
	var findings []model.Finding
	for _, r := range e.AnalyzeFiles(ctx, texts) {
		if r.Skipped {
			res.Skipped = append(res.Skipped, r.Path)
			continue
		}
		res.FilesAnalyzed++
		if r.ParseErr != nil {
			res.ParseFailures = append(res.ParseFailures, r.Path)
		}
		findings = append(findings, r.Findings...)
	}

	total := len(findings)
	findings = applyIgnores(findings, e.cfg, texts)
	findings = filterByPlugins(findings, e.cfg)
	findings = filterByCategories(findings, e.cfg)
	if req.Baseline != "" {
		b, err := loadBaseline(req.Baseline)
		if err != nil {
			return nil, fmt.Errorf("load baseline: %w", err)
		}
		findings = filterByBaseline(findings, b)
	}
	res.Suppressed = total - len(findings)
	res.Findings = findings
	res.Elapsed = time.Since(start)
	return res, nil
}

// discoverFiles maps display names to paths for every file under root with
// one of exts. Names are slash-separated and relative to root; a root that
// is itself a file is returned under its base name.
func discoverFiles(root string, exts []string) (map[string]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if len(exts) == 0 {
		exts = []string{".py"}
	}
	match := func(name string) bool {
		ext := strings.ToLower(filepath.Ext(name))
		for _, e := range exts {
			if ext == strings.ToLower(e) {
				return true
			}
		}
		return false
	}

	out := map[string]string{}
	if !info.IsDir() {
		out[filepath.Base(root)] = root
		return out, nil
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !match(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		out[filepath.ToSlash(rel)] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return out, nil
}
