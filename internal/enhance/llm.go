package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prathamc00/AI-Code-Reviewer/internal/logging"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
)

const (
	DefaultBatchSize = 5

	SystemPrompt = "You are a senior software engineer conducting a code review. Provide clear, actionable feedback."

	maxRawExplanation = 200
)

// Completer sends one prompt to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// LLM enhances findings through a Completer. Findings are sent in batches;
// the findings of one batch are requested concurrently. Any failure for a
// finding falls back to FallbackFor.
type LLM struct {
	client    Completer
	batchSize int
	logger    *zap.SugaredLogger
}

func NewLLM(client Completer, logger *zap.SugaredLogger) *LLM {
	if logger == nil {
		logger = logging.Logger
	}
	return &LLM{client: client, batchSize: DefaultBatchSize, logger: logger}
}

func (l *LLM) Enhance(ctx context.Context, findings []model.Finding) []model.EnhancedFinding {
	out := make([]model.EnhancedFinding, len(findings))
	for start := 0; start < len(findings); start += l.batchSize {
		end := min(start+l.batchSize, len(findings))
		g := new(errgroup.Group)
		for i := start; i < end; i++ {
			g.Go(func() error {
				out[i] = l.enhanceOne(ctx, findings[i])
				return nil
			})
		}
		_ = g.Wait()
	}
	return out
}

func (l *LLM) enhanceOne(ctx context.Context, f model.Finding) model.EnhancedFinding {
	if ctx.Err() != nil {
		return FallbackFor(f)
	}
	reply, err := l.client.Complete(ctx, SystemPrompt+"\n\n"+Prompt(f))
	if err != nil {
		l.logger.Warnw("failed to enhance finding", "file", f.File, "line", f.Line, "error", err)
		return FallbackFor(f)
	}
	r, err := ParseResponse(reply)
	if err != nil {
		l.logger.Warnw("failed to parse model response", "file", f.File, "line", f.Line, "error", err)
	}
	return model.EnhancedFinding{
		Finding:      f,
		Explanation:  r.Explanation,
		SuggestedFix: r.SuggestedFix,
		Severity:     r.Severity,
	}
}

// Prompt renders the review request for one finding.
func Prompt(f model.Finding) string {
	ctxBlock := f.Context
	if ctxBlock == "" {
		ctxBlock = "No additional context"
	}
	var b strings.Builder
	b.WriteString("You are reviewing Python code. A static analysis tool detected the following issue:\n\n")
	fmt.Fprintf(&b, "**File:** %s\n**Line:** %d\n**Issue:** %s\n**Category:** %s\n\n", f.File, f.Line, f.Issue, f.Category)
	fmt.Fprintf(&b, "**Code Snippet:**\n```python\n%s\n```\n\n", f.CodeSnippet)
	fmt.Fprintf(&b, "**Context:**\n```python\n%s\n```\n\n", ctxBlock)
	b.WriteString("Please provide:\n" +
		"1. **Explanation:** Why is this a problem? What are the potential consequences?\n" +
		"2. **Suggested Fix:** Provide a specific code example showing how to fix this issue.\n" +
		"3. **Severity:** Rate the severity from 1-5 (1=minor, 5=critical)\n\n" +
		"Format your response as JSON:\n```json\n{\n" +
		"  \"explanation\": \"Your explanation here\",\n" +
		"  \"suggested_fix\": \"Your suggested fix code here\",\n" +
		"  \"severity\": 3\n}\n```")
	return b.String()
}

// Response is the structured part of a model reply.
type Response struct {
	Explanation  string
	SuggestedFix string
	Severity     int
}

// ParseResponse extracts the JSON object from a reply, looking first inside
// a ```json fence, then any ``` fence, then at the whole text. Severity is
// clamped to 1..5. On failure it returns the leading 200 characters of the
// reply as the explanation, severity 3, and the parse error.
func ParseResponse(content string) (Response, error) {
	var raw struct {
		Explanation  *string         `json:"explanation"`
		SuggestedFix *string         `json:"suggested_fix"`
		Severity     json.RawMessage `json:"severity"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &raw); err != nil {
		return rawResponse(content), err
	}
	sev, err := parseSeverity(raw.Severity)
	if err != nil {
		return rawResponse(content), err
	}
	r := Response{
		Explanation:  "No explanation provided",
		SuggestedFix: "No fix suggested",
		Severity:     model.ClampSeverity(sev),
	}
	if raw.Explanation != nil {
		r.Explanation = *raw.Explanation
	}
	if raw.SuggestedFix != nil {
		r.SuggestedFix = *raw.SuggestedFix
	}
	return r, nil
}

func extractJSON(content string) string {
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(content, fence)
		if start < 0 {
			continue
		}
		body := content[start+len(fence):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(content)
}

// parseSeverity accepts a number or a numeric string; absent means 3.
func parseSeverity(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 3, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("severity: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("severity: %w", err)
	}
	return v, nil
}

func rawResponse(content string) Response {
	explanation := content
	if utf8.RuneCountInString(content) > maxRawExplanation {
		explanation = string([]rune(content)[:maxRawExplanation])
	}
	return Response{Explanation: explanation, SuggestedFix: "See explanation for details", Severity: 3}
}

// Command is a Completer that runs an external program, writing the prompt
// to its stdin and reading the reply from stdout.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a command line on whitespace.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.New("empty enhancement command")
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}

func (c Command) Complete(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", c.Name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", c.Name, err)
	}
	return stdout.String(), nil
}
