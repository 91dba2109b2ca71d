package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prathamc00/AI-Code-Reviewer/internal/analysis"
	"github.com/prathamc00/AI-Code-Reviewer/internal/cache"
	"github.com/prathamc00/AI-Code-Reviewer/internal/config"
	"github.com/prathamc00/AI-Code-Reviewer/internal/logging"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/plugins"
	"github.com/prathamc00/AI-Code-Reviewer/internal/python"
)

// Version is mixed into cache keys; bump it whenever rule output changes.
const Version = "1.0.0"

type Engine struct {
	registry *plugins.Registry
	cfg      config.Config
	logger   *zap.SugaredLogger
	store    cache.Store
	workers  int

	tracer  trace.Tracer
	meter   metric.Meter
	metrics *otelMetrics
}

type Option func(*Engine)

// WithConfig sets thresholds, context radius, worker count and the
// post-analysis filters used by Scan. Build cfg from config.Default or
// config.Load; a zero Config is replaced by config.Default, while a
// ContextLines of 0 in any other Config means no surrounding lines.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		if cfg.IsZero() {
			cfg = config.Default()
		}
		e.cfg = cfg
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers bounds the number of files analysed at once. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithCache(s cache.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithRegistry replaces the built-in detectors.
func WithRegistry(r *plugins.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithOTel enables a span per analysed file and the finding counters.
// Either argument may be nil.
func WithOTel(tracer trace.Tracer, meter metric.Meter) Option {
	return func(e *Engine) {
		e.tracer = tracer
		e.meter = meter
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{cfg: config.Default(), logger: logging.Logger, workers: -1}
	for _, o := range opts {
		o(e)
	}
	if e.workers < 0 {
		e.workers = e.cfg.Workers
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.registry == nil {
		e.registry = plugins.NewRegistry()
		e.registry.RegisterBuiltin(e.cfg.Thresholds)
	}
	if e.meter != nil {
		m, err := newOTelMetrics(e.meter)
		if err != nil {
			e.logger.Warnw("otel metrics disabled", "error", err)
		}
		e.metrics = m
	}
	return e
}

// Rules lists the metadata of every active rule.
func (e *Engine) Rules() []model.RuleMeta { return e.registry.Rules() }

// FileResult is the outcome of analysing one file. ParseErr is set when the
// tree-based rule sets were skipped because the file is not valid Python;
// Findings then hold only the text-pattern results.
type FileResult struct {
	Path     string
	Findings []model.Finding
	ParseErr error
	Skipped  bool
	Cached   bool
}

// Analyze runs every detector over each file and concatenates the results
// in path order. A file that fails to parse still contributes its
// text-pattern findings.
func (e *Engine) Analyze(ctx context.Context, files map[string]string) []model.Finding {
	var out []model.Finding
	for _, r := range e.AnalyzeFiles(ctx, files) {
		out = append(out, r.Findings...)
	}
	return out
}

// AnalyzeFiles analyses files concurrently and returns one result per path,
// sorted by path. Files not yet started when ctx is done are marked Skipped.
func (e *Engine) AnalyzeFiles(ctx context.Context, files map[string]string) []FileResult {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	results := make([]FileResult, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for i, p := range paths {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = FileResult{Path: p, Skipped: true}
				return nil
			}
			results[i] = e.AnalyzeFile(ctx, p, files[p])
			return nil
		})
	}
	_ = g.Wait()

	skipped := 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		}
	}
	if skipped > 0 {
		e.logger.Warnw("analysis budget exhausted", "skipped", skipped, "files", len(paths))
	}
	return results
}

// AnalyzeFile runs the text detectors and, when text parses, the tree rule
// sets over a single file.
func (e *Engine) AnalyzeFile(ctx context.Context, path, text string) FileResult {
	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "reviewer.analyze_file",
			trace.WithAttributes(attribute.String("file.path", path)))
		defer span.End()
	}

	key := cache.Key(Version, e.cfg.Digest(), path, text)
	if r, ok := e.loadCached(ctx, key, path); ok {
		e.record(ctx, span, r)
		return r
	}

	r := e.analyze(ctx, path, text)
	if r.Skipped {
		if span != nil {
			span.SetStatus(codes.Error, "cancelled")
		}
		return r
	}
	e.saveCached(ctx, key, r)
	e.record(ctx, span, r)
	return r
}

func (e *Engine) analyze(ctx context.Context, path, text string) FileResult {
	unit := analysis.NewSourceUnit(path, text)
	fc := analysis.NewFileContext(unit, e.cfg.ContextLines)
	for _, d := range e.registry.TextDetectors() {
		e.runText(d, fc)
	}

	res := FileResult{Path: path}
	tree, err := python.Parse(ctx, fc.Src)
	if err != nil {
		if ctx.Err() != nil {
			return FileResult{Path: path, Skipped: true}
		}
		e.logger.Debugw("parse failed, tree rules skipped", "file", path, "error", err)
		res.ParseErr = err
		res.Findings = fc.Findings()
		return res
	}
	defer tree.Close()

	w := analysis.NewWalker(e.logger)
	for _, s := range e.registry.RuleSets() {
		s.Register(w, fc)
	}
	w.Walk(tree.Root())
	res.Findings = fc.Findings()
	return res
}

func (e *Engine) runText(d plugins.TextDetector, fc *analysis.FileContext) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warnw("detector fault", "file", fc.Unit.Path(), "panic", r)
		}
	}()
	d.Scan(fc)
}

type cachedResult struct {
	Findings    []model.Finding `json:"findings"`
	ParseFailed bool            `json:"parseFailed,omitempty"`
	ParseLine   int             `json:"parseLine,omitempty"`
}

func (e *Engine) loadCached(ctx context.Context, key, path string) (FileResult, bool) {
	if e.store == nil {
		return FileResult{}, false
	}
	data, ok := e.store.Load(ctx, key)
	if !ok {
		return FileResult{}, false
	}
	var c cachedResult
	if err := json.Unmarshal(data, &c); err != nil {
		e.logger.Warnw("cache entry unreadable", "file", path, "error", err)
		return FileResult{}, false
	}
	r := FileResult{Path: path, Findings: c.Findings, Cached: true}
	if c.ParseFailed {
		r.ParseErr = &python.ParseError{Line: c.ParseLine, Reason: "invalid syntax"}
	}
	return r, true
}

func (e *Engine) saveCached(ctx context.Context, key string, r FileResult) {
	if e.store == nil {
		return
	}
	c := cachedResult{Findings: r.Findings}
	var perr *python.ParseError
	if errors.As(r.ParseErr, &perr) {
		c.ParseFailed = true
		c.ParseLine = perr.Line
	}
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := e.store.Save(ctx, key, data); err != nil {
		e.logger.Warnw("cache save failed", "file", r.Path, "error", err)
	}
}

func (e *Engine) record(ctx context.Context, span trace.Span, r FileResult) {
	if span != nil {
		span.SetAttributes(
			attribute.Int("reviewer.findings", len(r.Findings)),
			attribute.Bool("reviewer.cached", r.Cached),
		)
		if r.ParseErr != nil {
			span.RecordError(r.ParseErr)
			span.SetStatus(codes.Error, "parse failed")
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	e.metrics.record(ctx, r)
}

type otelMetrics struct {
	findings      metric.Int64Counter
	parseFailures metric.Int64Counter
}

func newOTelMetrics(m metric.Meter) (*otelMetrics, error) {
	findings, err := m.Int64Counter("reviewer.findings",
		metric.WithDescription("Findings reported, by category"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("create findings counter: %w", err)
	}
	parseFailures, err := m.Int64Counter("reviewer.parse_failures",
		metric.WithDescription("Files whose tree rules were skipped"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("create parse failure counter: %w", err)
	}
	return &otelMetrics{findings: findings, parseFailures: parseFailures}, nil
}

// record is a no-op on a nil receiver.
func (m *otelMetrics) record(ctx context.Context, r FileResult) {
	if m == nil {
		return
	}
	counts := map[model.Category]int64{}
	for _, f := range r.Findings {
		counts[f.Category]++
	}
	for _, cat := range model.AllCategories() {
		if n := counts[cat]; n > 0 {
			m.findings.Add(ctx, n, metric.WithAttributes(attribute.String("category", cat.Key())))
		}
	}
	if r.ParseErr != nil {
		m.parseFailures.Add(ctx, 1)
	}
}
