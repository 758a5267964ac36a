package app

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/codes"

	coreerrors "modgraph/internal/core/errors"
	"modgraph/internal/engine/graph"
	"modgraph/internal/engine/symbols"
	"modgraph/internal/engine/visibility"
	"modgraph/internal/shared/observability"
)

// LinkImports walks the compiled modules dependencies-first and brings each
// import into the importing module's table. Visibility violations and symbol
// errors are collected on the session, not returned; the error result is
// for misuse and cancellation only.
func (s *Session) LinkImports(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "session.LinkImports")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.PhaseDuration.WithLabelValues("link").Observe(time.Since(start).Seconds())
	}()

	if len(s.order) == 0 {
		err := coreerrors.New(coreerrors.CodeValidationError, "LinkImports needs a successful CompileAll")
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if s.linked {
		return nil
	}

	for _, id := range s.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.linkModule(id)
		s.graph.MarkCompiled(id)
	}
	s.linked = true

	span.SetAttributes(
		observability.CountAttr("violations", len(s.violations)),
		observability.CountAttr("link_errors", len(s.linkErrs)),
	)
	if len(s.violations) > 0 || len(s.linkErrs) > 0 {
		s.logger.Warn("imports linked with problems", "violations", len(s.violations), "errors", len(s.linkErrs))
	} else {
		s.logger.Info("imports linked", "modules", len(s.order))
	}
	return nil
}

func (s *Session) linkModule(id graph.ModuleID) {
	mod := s.graph.MustModule(id)
	checker := visibility.NewChecker(visibility.NewScope(s.crateOf(mod), mod.Path))
	targets := s.targets[id]

	for i, decl := range mod.Imports {
		if i >= len(targets) {
			break
		}
		dep := s.graph.MustModule(targets[i])
		switch decl.Kind {
		case graph.ImportGlob:
			s.linkGlob(mod, dep, decl)
		case graph.ImportSelective:
			s.linkSelective(mod, dep, decl, checker)
		default:
			s.linkModuleImport(mod, dep, decl)
		}
	}

	for _, v := range checker.Violations() {
		s.logger.Debug("visibility violation", "module", mod.PathString(), "symbol", v.Symbol, "at", v.Location.String())
	}
	s.violations = append(s.violations, checker.Violations()...)
}

// linkGlob imports every export of dep. The module's own definitions shadow
// glob-imported names. `pub use dep::*` re-exports them as well.
func (s *Session) linkGlob(mod, dep *graph.Module, decl graph.ImportDecl) {
	for _, sym := range dep.Exports.Exports() {
		if own, ok := mod.Exports.LookupModuleLevel(sym.Name); ok && slices.Equal(own.Module, mod.Path) {
			continue
		}
		if err := mod.Exports.ImportSymbol(sym); err != nil {
			s.linkFailed(mod, decl, err)
		}
	}
	if decl.Visibility == visibility.Public {
		mod.Exports.MergeExports(dep.Exports, "")
	}
}

// linkModuleImport binds the dependency under its local name. A public
// module import also re-exports dep's exports as local::name.
func (s *Session) linkModuleImport(mod, dep *graph.Module, decl graph.ImportDecl) {
	local := decl.LocalName()
	sym := symbols.NewModuleSymbol(local, decl.Span)
	if decl.Alias != "" {
		sym = symbols.NewImportAlias(local, dep.Path, decl.Span)
	}
	sym = sym.WithVisibility(decl.Visibility).InModule(mod.Path)
	if err := mod.Exports.Define(sym); err != nil {
		s.linkFailed(mod, decl, err)
		return
	}
	if decl.Visibility == visibility.Public {
		mod.Exports.MergeExports(dep.Exports, local)
	}
}

// linkSelective imports the listed names. Exported names import directly;
// anything else must pass the visibility checker. A name dep only imported
// itself counts as private to dep.
func (s *Session) linkSelective(mod, dep *graph.Module, decl graph.ImportDecl, checker *visibility.Checker) {
	target := visibility.NewScope(s.crateOf(dep), dep.Path)
	for _, name := range decl.Names {
		sym, ok := dep.Exports.LookupGlobal(name)
		if !ok {
			sym, ok = dep.Exports.LookupModuleLevel(name)
			if !ok {
				s.linkFailed(mod, decl, &symbols.NotFoundError{Name: name})
				continue
			}
			vis := sym.Visibility
			if !slices.Equal(sym.Module, dep.Path) {
				vis = visibility.Private
			}
			if !checker.CheckAccess(name, vis, target, decl.Span) {
				continue
			}
		}

		if err := mod.Exports.ImportSymbol(sym); err != nil {
			s.linkFailed(mod, decl, err)
			continue
		}
		if decl.Visibility == visibility.Public {
			re := visibility.PublicReExport(append(slices.Clone(dep.Path), name))
			exported := sym
			exported.Name = re.Name()
			if err := mod.Exports.DefineGlobal(exported); err != nil {
				s.linkFailed(mod, decl, err)
			}
		}
	}
}

func (s *Session) linkFailed(mod *graph.Module, decl graph.ImportDecl, err error) {
	s.linkErrs = append(s.linkErrs, &importError{
		module: mod.PathString(),
		path:   graph.JoinPath(decl.Path),
		at:     decl.Span.String(),
		err:    err,
	})
}
