package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"modgraph/internal/core/app"
	"modgraph/internal/core/config"
	"modgraph/internal/data/exports"
	"modgraph/internal/shared/util"
	"modgraph/internal/ui/report"
)

const (
	exitOK       = 0
	exitProblems = 1
	exitUsage    = 2
)

const defaultConfigPath = "./modgraph.toml"

type cliOptions struct {
	configPath string
	entry      string
	dot        string
	markdown   string
	sarif      string
	summary    string
	trace      bool
	impact     string
	top        int
	verbose    bool
	args       []string
}

// run is main without the process exit so tests can drive the whole CLI.
func run(ctx context.Context, opts cliOptions, stdout, stderr io.Writer) int {
	if opts.trace && opts.impact != "" {
		fmt.Fprintln(stderr, "--trace and --impact cannot be used together")
		return exitUsage
	}
	if opts.trace && len(opts.args) != 2 {
		fmt.Fprintln(stderr, "trace mode requires two module arguments: modgraph --trace <from> <to>")
		return exitUsage
	}

	cfg, baseDir, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitUsage
	}

	level := cfg.Log.SlogLevel()
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.Log.Tracing {
		shutdown := setupTracing(logger)
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	paths, err := config.ResolvePaths(cfg, baseDir)
	if err != nil {
		logger.Error("failed to resolve config paths", "error", err)
		return exitUsage
	}
	if opts.entry != "" {
		paths.Entry = config.ResolveRelative(baseDir, opts.entry)
	}
	if opts.dot != "" {
		paths.DOT = config.ResolveRelative(baseDir, opts.dot)
	}
	if errs := config.Validate(cfg, paths); len(errs) > 0 {
		for _, e := range errs {
			logger.Error("invalid configuration", "error", e)
		}
		return exitUsage
	}

	sessionOpts := []app.Option{app.WithLogger(logger)}
	if paths.ExportIndex != "" {
		store, err := exports.Open(paths.ExportIndex)
		if err != nil {
			logger.Error("failed to open export index", "path", paths.ExportIndex, "error", err)
			return exitUsage
		}
		defer store.Close()
		sessionOpts = append(sessionOpts, app.WithExportSink(store))
	}

	session, err := app.NewSession(cfg, paths, sessionOpts...)
	if err != nil {
		logger.Error("failed to initialize session", "error", err)
		return exitUsage
	}

	code := compile(ctx, session, logger)

	if opts.trace {
		out, err := session.TraceImportChain(opts.args[0], opts.args[1])
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitProblems
		}
		fmt.Fprintln(stdout, out)
		return exitOK
	}
	if opts.impact != "" {
		impact, err := session.AnalyzeImpact(opts.impact)
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitProblems
		}
		fmt.Fprint(stdout, session.FormatImpactReport(impact))
		return exitOK
	}

	summary := session.Report(opts.top)
	if err := writeOutputs(session, summary, paths, opts, logger); err != nil {
		logger.Error("failed to write outputs", "error", err)
		code = exitProblems
	}
	fmt.Fprint(stdout, report.Text(summary))
	return code
}

// compile runs discovery, linking and export. Problems are logged and turn
// into a non-zero exit code; the report is still produced.
func compile(ctx context.Context, session *app.Session, logger *slog.Logger) int {
	if _, err := session.CompileAll(ctx, ""); err != nil {
		logger.Error("compilation failed", "error", err)
		return exitProblems
	}
	if err := session.LinkImports(ctx); err != nil {
		logger.Error("linking failed", "error", err)
		return exitProblems
	}
	if _, err := session.Export(ctx); err != nil {
		logger.Error("failed to write export index", "error", err)
		return exitProblems
	}
	if !session.Report(0).OK() {
		return exitProblems
	}
	return exitOK
}

// loadConfig reads path, or falls back to the defaults when the default path
// does not exist. The base directory is the config file's directory.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		cfg, err := config.Parse("")
		if err != nil {
			return nil, "", err
		}
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		return cfg, cwd, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, filepath.Dir(path), nil
}

func writeOutputs(session *app.Session, summary app.Report, paths config.ResolvedPaths, opts cliOptions, logger *slog.Logger) error {
	var errs []error
	if paths.DOT != "" {
		if err := util.WriteStringWithDirs(paths.DOT, session.DOT(), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write DOT %q: %w", paths.DOT, err))
		} else {
			logger.Info("wrote DOT graph", "path", paths.DOT)
		}
	}
	if opts.markdown != "" {
		if err := util.WriteFileAtomic(opts.markdown, report.Markdown(summary, session.DOT())); err != nil {
			errs = append(errs, err)
		} else {
			logger.Info("wrote markdown report", "path", opts.markdown)
		}
	}
	if opts.sarif != "" {
		data, err := report.SARIF(summary, paths.ProjectRoot, VERSION)
		if err == nil {
			err = util.WriteFileAtomic(opts.sarif, string(data))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("write SARIF %q: %w", opts.sarif, err))
		} else {
			logger.Info("wrote SARIF report", "path", opts.sarif)
		}
	}
	if opts.summary != "" {
		data, err := report.Summary(summary)
		if err == nil {
			err = util.WriteFileAtomic(opts.summary, string(data))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("write summary %q: %w", opts.summary, err))
		} else {
			logger.Info("wrote run summary", "path", opts.summary)
		}
	}
	if paths.Metrics != "" {
		if err := os.MkdirAll(filepath.Dir(paths.Metrics), 0o755); err != nil {
			errs = append(errs, err)
		} else if err := prometheus.WriteToTextfile(paths.Metrics, prometheus.DefaultGatherer); err != nil {
			errs = append(errs, fmt.Errorf("write metrics %q: %w", paths.Metrics, err))
		} else {
			logger.Info("wrote metrics", "path", paths.Metrics)
		}
	}
	return errors.Join(errs...)
}

// slogExporter prints finished spans through the logger at debug level.
type slogExporter struct {
	logger *slog.Logger
}

func (e slogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		attrs := []any{
			"span", span.Name(),
			"duration", span.EndTime().Sub(span.StartTime()),
			"status", span.Status().Code.String(),
		}
		for _, kv := range span.Attributes() {
			attrs = append(attrs, string(kv.Key), kv.Value.Emit())
		}
		e.logger.Debug("trace", attrs...)
	}
	return nil
}

func (slogExporter) Shutdown(context.Context) error { return nil }

func setupTracing(logger *slog.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(slogExporter{logger: logger.With("component", "tracing")}))
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
