// Package app drives one compilation: it discovers the modules reachable
// from an entry file, orders them, links their imports and hands the result
// to the report and export layers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"modgraph/internal/core/config"
	coreerrors "modgraph/internal/core/errors"
	"modgraph/internal/core/ports"
	"modgraph/internal/engine/graph"
	"modgraph/internal/engine/parser"
	"modgraph/internal/engine/resolver"
	"modgraph/internal/engine/visibility"
	"modgraph/internal/shared/observability"
)

// StdlibCrate is the compilation unit name of standard library modules.
const StdlibCrate = "stdlib"

type Option func(*Session)

func WithParser(p ports.CodeParser) Option {
	return func(s *Session) { s.parser = p }
}

// WithExportSink enables Export. Without one Export is a no-op.
func WithExportSink(sink ports.ExportSink) Option {
	return func(s *Session) { s.sink = sink }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func WithResolver(r *resolver.ModuleResolver) Option {
	return func(s *Session) { s.resolver = r }
}

// Session owns the graph of one compilation. Its methods must be called from
// a single goroutine; only file parsing inside CompileAll fans out.
type Session struct {
	cfg   *config.Config
	paths config.ResolvedPaths

	graph    *graph.ModuleGraph
	resolver *resolver.ModuleResolver
	parser   ports.CodeParser
	sink     ports.ExportSink
	logger   *slog.Logger

	byFile  map[string]graph.ModuleID
	targets map[graph.ModuleID][]graph.ModuleID // import index -> dependency
	entry   graph.ModuleID
	order   []graph.ModuleID
	linked  bool

	violations []visibility.Violation
	linkErrs   []error
	compileErr error
	runID      string
}

func NewSession(cfg *config.Config, paths config.ResolvedPaths, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, coreerrors.New(coreerrors.CodeValidationError, "config is required")
	}
	s := &Session{
		cfg:     cfg,
		paths:   paths,
		graph:   graph.New(),
		byFile:  make(map[string]graph.ModuleID),
		targets: make(map[graph.ModuleID][]graph.ModuleID),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "session")
	if s.parser == nil {
		s.parser = parser.New()
	}
	if s.resolver == nil {
		r, err := resolver.New(resolver.Options{
			SourceExt:      cfg.Resolver.SourceExt,
			NativeExt:      cfg.Resolver.NativeExt,
			SearchPaths:    paths.SearchPaths,
			Exclude:        cfg.Resolver.Exclude,
			ProbeCacheSize: cfg.Resolver.ProbeCacheSize,
			Logger:         s.logger.With("component", "resolver"),
		})
		if err != nil {
			return nil, err
		}
		s.resolver = r
	}
	return s, nil
}

func (s *Session) Graph() *graph.ModuleGraph {
	return s.graph
}

// Order is the dependencies-first order of the last successful CompileAll.
func (s *Session) Order() []graph.ModuleID {
	return slices.Clone(s.order)
}

func (s *Session) Violations() []visibility.Violation {
	return slices.Clone(s.violations)
}

// LinkErrors are the symbol errors collected by LinkImports.
func (s *Session) LinkErrors() []error {
	return slices.Clone(s.linkErrs)
}

func (s *Session) RunID() string {
	return s.runID
}

// pending is a module registered in the graph whose file is not parsed yet.
type pending struct {
	id   graph.ModuleID
	file string
}

type parsed struct {
	file *parser.File
	err  error
}

// CompileAll discovers every module reachable from entry, rejects cycles and
// returns the compilation order, dependencies first. An empty entry means the
// configured one.
func (s *Session) CompileAll(ctx context.Context, entry string) ([]graph.ModuleID, error) {
	ctx, span := observability.Tracer.Start(ctx, "session.CompileAll")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.PhaseDuration.WithLabelValues("compile").Observe(time.Since(start).Seconds())
	}()

	order, err := s.compileAll(ctx, entry)
	s.compileErr = err
	span.SetAttributes(
		observability.CountAttr("modules", s.graph.Len()),
		observability.CountAttr("edges", s.graph.EdgeCount()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return order, nil
}

func (s *Session) compileAll(ctx context.Context, entry string) ([]graph.ModuleID, error) {
	if entry == "" {
		entry = s.paths.Entry
	}
	if entry == "" {
		return nil, coreerrors.New(coreerrors.CodeValidationError, "no entry file configured")
	}
	entry, err := filepath.Abs(entry)
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeIO, "resolve entry path")
	}

	name := strings.TrimSuffix(filepath.Base(entry), filepath.Ext(entry))
	s.entry = s.register([]string{name}, entry)
	wave := []pending{{id: s.entry, file: entry}}

	var failures []error
	for len(wave) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := s.parseWave(ctx, wave)
		if err != nil {
			return nil, err
		}

		var next []pending
		for i, item := range wave {
			if results[i].err != nil {
				failures = append(failures, results[i].err)
				continue
			}
			discovered, errs := s.attach(item.id, results[i].file)
			failures = append(failures, errs...)
			next = append(next, discovered...)
		}
		if limit := s.cfg.Driver.MaxModules; limit > 0 && s.graph.Len() > limit {
			return nil, coreerrors.AddContext(
				coreerrors.New(coreerrors.CodeValidationError,
					fmt.Sprintf("project exceeds max_modules (%d)", limit)),
				coreerrors.CtxPath, entry)
		}
		wave = next
	}
	if len(failures) > 0 {
		return nil, &DiscoveryError{Errors: failures}
	}

	order, err := s.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	s.order = order
	s.logger.Info("modules discovered", "modules", s.graph.Len(), "edges", s.graph.EdgeCount())
	return slices.Clone(order), nil
}

// parseWave reads and parses the files of one wave concurrently. A file
// failure is returned in its slot; only cancellation aborts the wave.
func (s *Session) parseWave(ctx context.Context, wave []pending) ([]parsed, error) {
	results := make([]parsed, len(wave))
	eg, ctx := errgroup.WithContext(ctx)
	if workers := s.cfg.Driver.ParseWorkers; workers > 0 {
		eg.SetLimit(workers)
	}
	for i, item := range wave {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			results[i] = s.parseFile(item.file)
			observability.ParseDuration.Observe(time.Since(start).Seconds())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Session) parseFile(path string) parsed {
	content, err := os.ReadFile(path)
	if err != nil {
		return parsed{err: coreerrors.AddContext(
			coreerrors.Wrap(err, coreerrors.CodeIO, "read module source"), coreerrors.CtxPath, path)}
	}
	file, err := s.parser.ParseFile(path, content)
	if err != nil {
		return parsed{err: coreerrors.AddContext(
			coreerrors.Wrap(err, coreerrors.CodeParse, "parse module source"), coreerrors.CtxPath, path)}
	}
	return parsed{file: file}
}

// register adds a module for file unless the file already has one.
func (s *Session) register(path []string, file string) graph.ModuleID {
	if id, ok := s.byFile[file]; ok {
		return id
	}
	mod := graph.NewModule(path[len(path)-1], path, file)
	id := s.graph.AddModule(mod)
	s.byFile[file] = id
	return id
}

// attach fills module id from its parsed file: declarations go into its
// table, each import is resolved to a module and recorded as an edge. It
// returns the modules seen for the first time.
func (s *Session) attach(id graph.ModuleID, file *parser.File) ([]pending, []error) {
	mod := s.graph.MustModule(id)
	mod.AST = file
	mod.Imports = file.Imports

	var errs []error
	for _, sym := range file.Symbols {
		if err := mod.Exports.Define(sym.InModule(mod.Path)); err != nil {
			errs = append(errs, err)
		}
	}

	var fresh []pending
	targets := make([]graph.ModuleID, len(file.Imports))
	for i, decl := range file.Imports {
		depPath, depFile, err := s.resolveImport(mod, decl)
		if err == nil {
			if existing, ok := s.graph.FindByPath(depPath); ok {
				if other := s.graph.MustModule(existing); other.FilePath != depFile {
					err = &PathCollisionError{Path: depPath, Existing: other.FilePath, File: depFile}
				}
			}
		}
		if err != nil {
			errs = append(errs, &importError{
				module: mod.PathString(),
				path:   graph.JoinPath(decl.Path),
				at:     decl.Span.String(),
				err:    err,
			})
			continue
		}
		dep, known := s.byFile[depFile]
		if !known {
			dep = s.register(depPath, depFile)
			fresh = append(fresh, pending{id: dep, file: depFile})
		}
		targets[i] = dep
		s.graph.AddDependency(id, dep)
	}
	s.targets[id] = targets
	return fresh, errs
}

// resolveImport maps decl to the module path it names and the file holding
// it. Paths starting with self or super resolve against the importing file.
func (s *Session) resolveImport(from *graph.Module, decl graph.ImportDecl) ([]string, string, error) {
	if len(decl.Path) > 0 && (decl.Path[0] == "self" || decl.Path[0] == "super") {
		file, err := s.resolver.ResolveRelative(decl.Path, from.FilePath)
		if err != nil {
			return nil, "", err
		}
		base := from.Path
		if !isDirectoryModule(from) {
			base = resolver.ParentPath(base)
		}
		if decl.Path[0] == "super" {
			base = resolver.ParentPath(base)
		}
		return append(slices.Clone(base), decl.Path[1:]...), file, nil
	}

	file, err := s.resolver.ResolvePath(decl.Path, s.paths.ProjectRoot, s.paths.StdlibRoot)
	if err != nil {
		return nil, "", err
	}
	if abs, err := filepath.Abs(file); err == nil {
		file = abs
	}
	return slices.Clone(decl.Path), file, nil
}

// isDirectoryModule reports whether mod's file is the module's directory
// entry point (`name/mod.ext` or `name/name.ext`). Relative imports of such a
// module resolve inside its own directory.
func isDirectoryModule(mod *graph.Module) bool {
	if mod.FilePath == "" {
		return false
	}
	base := filepath.Base(mod.FilePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem == "mod" || stem == filepath.Base(filepath.Dir(mod.FilePath))
}

// crateOf is the compilation unit a module belongs to for visibility checks.
// Only modules loaded from the stdlib root belong to the stdlib crate.
func (s *Session) crateOf(mod *graph.Module) string {
	if len(mod.Path) > 0 && mod.Path[0] == resolver.StdlibPrefix {
		return StdlibCrate
	}
	return s.cfg.Project.Name
}

// Export records the compiled graph in the export sink, if one is set.
func (s *Session) Export(ctx context.Context) (string, error) {
	if s.sink == nil {
		return "", nil
	}
	ctx, span := observability.Tracer.Start(ctx, "session.Export")
	defer span.End()

	runID, err := s.sink.RecordGraph(ctx, s.cfg.Project.Name, s.graph)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", coreerrors.AddContext(err, coreerrors.CtxOperation, "export")
	}
	span.SetAttributes(attribute.String("modgraph.run_id", runID))
	s.runID = runID
	s.logger.Info("export index written", "run_id", runID)
	return runID, nil
}
