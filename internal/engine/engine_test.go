package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/prathamc00/AI-Code-Reviewer/internal/config"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/plugins"
	"github.com/prathamc00/AI-Code-Reviewer/internal/python"
)

const goodSource = `import os

API_KEY = "sk_live_1234567890abcdefghijk"

def run(cmd):
    """Run a command."""
    os.system(cmd)
    for i in cmd:
        for j in i:
            for k in j:
                eval(k)
`

const brokenSource = `password = "hunter2"
def broken(:
    eval(x)
`

type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	loads int
	hits  int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Load(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	b, ok := m.data[key]
	if ok {
		m.hits++
	}
	return b, ok
}

func (m *memStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func rules(fs []model.Finding) []string {
	var out []string
	for _, f := range fs {
		out = append(out, fmt.Sprintf("%s:%d:%s", f.File, f.Line, f.RuleID))
	}
	return out
}

func TestAnalyzeFile(t *testing.T) {
	e := New()
	r := e.AnalyzeFile(context.Background(), "app.py", goodSource)
	require.NoError(t, r.ParseErr)
	assert.Equal(t, []string{
		"app.py:3:" + plugins.RuleHardcodedSecretID,
		"app.py:7:" + plugins.RuleProcessExecID,
		"app.py:10:" + plugins.RuleDeepLoopID,
		"app.py:11:" + plugins.RuleDynamicExecID,
	}, rules(r.Findings))
}

func TestParseFailureIsolation(t *testing.T) {
	e := New()
	results := e.AnalyzeFiles(context.Background(), map[string]string{
		"good.py":   goodSource,
		"broken.py": brokenSource,
	})
	require.Len(t, results, 2)

	broken, good := results[0], results[1]
	assert.Equal(t, "broken.py", broken.Path)
	require.Error(t, broken.ParseErr)
	assert.ErrorIs(t, broken.ParseErr, python.ErrParse)
	require.Len(t, broken.Findings, 1, "text detectors still run")
	assert.Equal(t, plugins.RuleHardcodedSecretID, broken.Findings[0].RuleID)

	assert.NoError(t, good.ParseErr)
	assert.Len(t, good.Findings, 4)
}

func TestPython2SourceSkipsTreeRules(t *testing.T) {
	src := "def Run(a, b, c, d, e, f):\n    print \"hello\"\n    eval(a)\n"
	r := New().AnalyzeFile(context.Background(), "legacy.py", src)
	require.Error(t, r.ParseErr)
	assert.ErrorIs(t, r.ParseErr, python.ErrParse)
	assert.Empty(t, r.Findings)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 12; i++ {
		files[fmt.Sprintf("pkg/m%02d.py", i)] = goodSource
	}
	files["pkg/broken.py"] = brokenSource

	e := New(WithWorkers(4))
	first := e.Analyze(context.Background(), files)
	second := e.Analyze(context.Background(), files)
	assert.Equal(t, first, second)
	assert.Len(t, first, 12*4+1)
}

func TestFindingLineAndContext(t *testing.T) {
	files := map[string]string{"a.py": goodSource, "b.py": brokenSource}
	for _, f := range New().Analyze(context.Background(), files) {
		require.GreaterOrEqual(t, f.Line, 1)
		if f.Context == "" {
			continue
		}
		want := strings.Split(files[f.File], "\n")[f.Line-1]
		assert.Contains(t, f.Context, ">>> "+strings.TrimRight(want, " \t"), f.RuleID)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := New().AnalyzeFiles(ctx, map[string]string{"a.py": goodSource, "b.py": goodSource})
	for _, r := range results {
		assert.True(t, r.Skipped)
		assert.Empty(t, r.Findings)
	}
}

func TestZeroConfigUsesDefaults(t *testing.T) {
	contextOf := func(e *Engine) string {
		r := e.AnalyzeFile(context.Background(), "app.py", goodSource)
		require.NoError(t, r.ParseErr)
		require.Len(t, r.Findings, 4)
		return r.Findings[1].Context
	}

	full := contextOf(New(WithConfig(config.Config{})))
	assert.Len(t, strings.Split(full, "\n"), 7)
	assert.Equal(t, contextOf(New()), full)

	cfg := config.Default()
	cfg.ContextLines = 0
	assert.Equal(t, ">>>     os.system(cmd)", contextOf(New(WithConfig(cfg))))
}

func TestCache(t *testing.T) {
	store := newMemStore()
	e := New(WithCache(store))
	ctx := context.Background()

	first := e.AnalyzeFile(ctx, "a.py", goodSource)
	assert.False(t, first.Cached)
	second := e.AnalyzeFile(ctx, "a.py", goodSource)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Findings, second.Findings)

	bad1 := e.AnalyzeFile(ctx, "b.py", brokenSource)
	bad2 := e.AnalyzeFile(ctx, "b.py", brokenSource)
	assert.True(t, bad2.Cached)
	assert.ErrorIs(t, bad2.ParseErr, python.ErrParse)
	assert.Equal(t, bad1.Findings, bad2.Findings)

	// Different text misses.
	third := e.AnalyzeFile(ctx, "a.py", goodSource+"\n")
	assert.False(t, third.Cached)
	assert.Equal(t, 2, store.hits)
}

func TestCacheKeyIncludesThresholds(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	New(WithCache(store)).AnalyzeFile(ctx, "a.py", goodSource)

	cfg := config.Default()
	cfg.Thresholds.Complexity = 1
	r := New(WithCache(store), WithConfig(cfg)).AnalyzeFile(ctx, "a.py", goodSource)
	assert.False(t, r.Cached)
}

func TestTelemetry(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	e := New(WithOTel(tp.Tracer("test"), metricnoop.NewMeterProvider().Meter("test")))
	e.Analyze(context.Background(), map[string]string{"a.py": goodSource, "b.py": brokenSource})

	spans := sr.Ended()
	require.Len(t, spans, 2)
	names := map[string]bool{}
	for _, s := range spans {
		assert.Equal(t, "reviewer.analyze_file", s.Name())
		for _, kv := range s.Attributes() {
			if kv.Key == "file.path" {
				names[kv.Value.AsString()] = true
			}
		}
	}
	assert.True(t, names["a.py"])
	assert.True(t, names["b.py"])
}

func TestRules(t *testing.T) {
	assert.Len(t, New().Rules(), 15)
}
