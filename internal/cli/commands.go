package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prathamc00/AI-Code-Reviewer/internal/cache"
	"github.com/prathamc00/AI-Code-Reviewer/internal/config"
	"github.com/prathamc00/AI-Code-Reviewer/internal/engine"
	"github.com/prathamc00/AI-Code-Reviewer/internal/enhance"
	"github.com/prathamc00/AI-Code-Reviewer/internal/logging"
	"github.com/prathamc00/AI-Code-Reviewer/internal/model"
	"github.com/prathamc00/AI-Code-Reviewer/internal/report"
	"github.com/prathamc00/AI-Code-Reviewer/internal/telemetry"
	"github.com/prathamc00/AI-Code-Reviewer/internal/tui"
)

func AddCommands(root *cobra.Command) {
	root.AddCommand(newScanCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newRulesCmd())
}

// scanOutput is the JSON document written by "scan --format json".
type scanOutput struct {
	report.ReviewReport
	FilesAnalyzed int      `json:"files_analyzed"`
	ParseFailures []string `json:"parse_failures,omitempty"`
	Skipped       []string `json:"skipped,omitempty"`
	ElapsedMs     int64    `json:"elapsed_ms"`
}

type scanOptions struct {
	format        string
	outputFile    string
	configPath    string
	contextLines  int
	workers       int
	budgetMs      int
	failOn        int
	baseline      string
	writeBaseline string
	enhanceCmd    string
	useTUI        bool
	debug         bool
	trace         bool
}

func newScanCmd() *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Review Python sources for security, performance and code-quality issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runScan(cmd, path, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "table", "Output format: table|json|sarif")
	f.StringVarP(&opts.outputFile, "out", "o", "", "Write the report to a file instead of stdout")
	f.StringVar(&opts.configPath, "config", "", "Config file (default: nearest "+config.FileName+")")
	f.IntVar(&opts.contextLines, "context-lines", 3, "Lines of context around each finding")
	f.IntVar(&opts.workers, "workers", 0, "Files analysed concurrently (0 = number of CPUs)")
	f.IntVar(&opts.budgetMs, "budget-ms", 0, "Time budget for the scan in milliseconds (0 = none)")
	f.IntVar(&opts.failOn, "fail-on", 0, "Exit non-zero if a finding has this severity (1-5) or higher")
	f.StringVar(&opts.baseline, "baseline", "", "Hide findings recorded in this baseline file")
	f.StringVar(&opts.writeBaseline, "write-baseline", "", "Write a baseline file with finding fingerprints")
	f.StringVar(&opts.enhanceCmd, "enhance-cmd", "", "Command that answers review prompts on stdin (default: built-in severities)")
	f.BoolVar(&opts.useTUI, "tui", false, "Browse findings interactively")
	f.BoolVar(&opts.debug, "debug", false, "Verbose logging")
	f.BoolVar(&opts.trace, "trace", false, "Write OpenTelemetry spans and counters to stderr as JSON lines")
	return cmd
}

func runScan(cmd *cobra.Command, path string, opts scanOptions) error {
	logger := logging.Init(opts.debug)
	defer func() { _ = logger.Sync() }()

	if opts.failOn < 0 || opts.failOn > model.MaxSeverity {
		return fmt.Errorf("--fail-on must be between 0 and %d", model.MaxSeverity)
	}
	switch opts.format {
	case "table", "json", "sarif":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cfg, err := loadConfig(cmd, path, opts)
	if err != nil {
		return err
	}

	engOpts := []engine.Option{engine.WithConfig(cfg), engine.WithLogger(logger)}
	if store, closeStore := openStore(cfg, logger); store != nil {
		defer closeStore()
		engOpts = append(engOpts, engine.WithCache(store))
	}
	if opts.trace {
		tp := telemetry.NewTracerProvider(cmd.ErrOrStderr())
		defer func() { _ = tp.Shutdown(context.Background()) }()
		mp := telemetry.NewMeterProvider(cmd.ErrOrStderr())
		defer func() {
			if err := mp.Shutdown(context.Background()); err != nil {
				logger.Warnw("metrics flush failed", "error", err)
			}
		}()
		engOpts = append(engOpts, engine.WithOTel(tp.Tracer("reviewer"), mp.Meter("reviewer")))
	}
	eng := engine.New(engOpts...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := eng.Scan(ctx, model.ScanRequest{
		Path:       path,
		Baseline:   opts.baseline,
		TimeBudget: time.Duration(cfg.TimeBudgetMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	for _, p := range result.ParseFailures {
		logger.Infow("syntax error, tree rules skipped", "file", p)
	}

	var enhancer enhance.Enhancer = enhance.Fallback{}
	if opts.enhanceCmd != "" {
		c, err := enhance.ParseCommand(opts.enhanceCmd)
		if err != nil {
			return err
		}
		enhancer = enhance.NewLLM(c, logger)
	}
	enhanced := enhancer.Enhance(ctx, result.Findings)
	rep := report.NewReviewReport(path, enhanced)

	if opts.useTUI {
		if err := tui.Run(enhanced); err != nil {
			return err
		}
	} else if err := writeReport(cmd.OutOrStdout(), opts, rep, result, eng); err != nil {
		return err
	}

	if opts.writeBaseline != "" {
		if err := engine.WriteBaseline(opts.writeBaseline, result.Findings); err != nil {
			return fmt.Errorf("write baseline: %w", err)
		}
	}
	if opts.failOn > 0 {
		for _, f := range enhanced {
			if f.Severity >= opts.failOn {
				return fmt.Errorf("fail-on threshold met: %s:%d severity %d", f.File, f.Line, f.Severity)
			}
		}
	}
	return nil
}

// loadConfig resolves the config file, then lets explicitly set flags win.
func loadConfig(cmd *cobra.Command, path string, opts scanOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, _, err = config.Load(path)
	}
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("context-lines") {
		cfg.ContextLines = opts.contextLines
	}
	if f.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if f.Changed("budget-ms") {
		cfg.TimeBudgetMs = opts.budgetMs
	}
	return cfg, cfg.Validate()
}

// openStore returns nil when caching is off or the backend is unavailable.
func openStore(cfg config.Config, logger *zap.SugaredLogger) (cache.Store, func()) {
	switch cfg.Cache.Backend {
	case config.CacheFile:
		s, err := cache.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			logger.Warnw("file cache disabled", "error", err)
			return nil, nil
		}
		return s, func() {}
	case config.CacheRedis:
		s, err := cache.NewRedisStore(cache.RedisOptions{URL: cfg.Cache.RedisURL, TTL: cfg.Cache.TTL})
		if err != nil {
			logger.Warnw("redis cache disabled", "error", err)
			return nil, nil
		}
		return s, func() { _ = s.Close() }
	}
	return nil, nil
}

func writeReport(stdout io.Writer, opts scanOptions, rep report.ReviewReport, result *model.ScanResult, eng *engine.Engine) error {
	w := stdout
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch opts.format {
	case "json":
		out := scanOutput{
			ReviewReport:  rep,
			FilesAnalyzed: result.FilesAnalyzed,
			ParseFailures: result.ParseFailures,
			Skipped:       result.Skipped,
			ElapsedMs:     result.Elapsed.Milliseconds(),
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "sarif":
		data, err := report.ToSARIF(rep.Findings, eng.Rules())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		if err := report.WriteText(w, rep); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%d file(s) analysed in %s", result.FilesAnalyzed, result.Elapsed.Round(time.Millisecond))
		if err == nil && len(result.ParseFailures) > 0 {
			_, err = fmt.Fprintf(w, ", %d with syntax errors", len(result.ParseFailures))
		}
		if err == nil && len(result.Skipped) > 0 {
			_, err = fmt.Fprintf(w, ", %d skipped (budget)", len(result.Skipped))
		}
		if err == nil {
			_, err = fmt.Fprintln(w)
		}
		return err
	}
}
