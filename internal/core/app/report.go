package app

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	coreerrors "modgraph/internal/core/errors"
	"modgraph/internal/engine/graph"
	"modgraph/internal/engine/visibility"
)

// ModuleSummary is one row of the per-module metrics table.
type ModuleSummary struct {
	Path    string
	File    string
	Metrics graph.ModuleMetrics
}

// Report is a plain-data summary of a session for the report and CLI layers.
type Report struct {
	Project string
	Entry   string
	Modules int
	Edges   int
	// Order is empty when CompileAll failed.
	Order          []string
	CircularGroups [][]string
	// Files maps module paths to their source files.
	Files        map[string]string
	Violations   []visibility.Violation
	Errors       []error
	CompileError error
	RunID        string
	Hotspots     []ModuleSummary
}

// OK reports a compilation without errors or violations.
func (r Report) OK() bool {
	return r.CompileError == nil && len(r.Errors) == 0 && len(r.Violations) == 0
}

// Report summarises the session. Hotspots lists at most top modules by
// importance score; top <= 0 lists all.
func (s *Session) Report(top int) Report {
	r := Report{
		Project:      s.cfg.Project.Name,
		Modules:      s.graph.Len(),
		Edges:        s.graph.EdgeCount(),
		Order:        s.graph.Names(s.order),
		Violations:   slices.Clone(s.violations),
		Errors:       slices.Clone(s.linkErrs),
		CompileError: s.compileErr,
		RunID:        s.runID,
		Files:        make(map[string]string, s.graph.Len()),
	}
	if s.graph.Len() > 0 {
		r.Entry = s.graph.Name(s.entry)
	}
	for _, group := range s.graph.CircularGroups() {
		r.CircularGroups = append(r.CircularGroups, s.graph.Names(group))
	}

	metrics := s.graph.ComputeModuleMetrics()
	for id, m := range metrics {
		mod := s.graph.MustModule(id)
		r.Files[mod.PathString()] = mod.FilePath
		r.Hotspots = append(r.Hotspots, ModuleSummary{Path: mod.PathString(), File: mod.FilePath, Metrics: m})
	}
	sort.Slice(r.Hotspots, func(i, j int) bool {
		a, b := r.Hotspots[i], r.Hotspots[j]
		if a.Metrics.ImportanceScore != b.Metrics.ImportanceScore {
			return a.Metrics.ImportanceScore > b.Metrics.ImportanceScore
		}
		return a.Path < b.Path
	})
	if top > 0 && len(r.Hotspots) > top {
		r.Hotspots = r.Hotspots[:top]
	}
	return r
}

// DOT renders the graph with its circular groups highlighted.
func (s *Session) DOT() string {
	return s.graph.DOT(s.graph.CircularGroups())
}

func (s *Session) moduleByPath(path string) (graph.ModuleID, error) {
	id, ok := s.graph.FindByPath(strings.Split(path, graph.PathSeparator))
	if !ok {
		return 0, coreerrors.AddContext(
			coreerrors.New(coreerrors.CodeNotFound, "module not found"), coreerrors.CtxModule, path)
	}
	return id, nil
}

// TraceImportChain renders the shortest dependency chain from one module to
// another, both given as joined module paths.
func (s *Session) TraceImportChain(from, to string) (string, error) {
	fromID, err := s.moduleByPath(from)
	if err != nil {
		return "", err
	}
	toID, err := s.moduleByPath(to)
	if err != nil {
		return "", err
	}

	chain, ok := s.graph.FindImportChain(fromID, toID)
	if !ok {
		return "", coreerrors.New(coreerrors.CodeNotFound,
			fmt.Sprintf("no import chain found from %s to %s", from, to))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Import chain: %s -> %s\n\n", from, to)
	for i, name := range s.graph.Names(chain) {
		b.WriteString(name)
		b.WriteString("\n")
		if i < len(chain)-1 {
			b.WriteString("  -> ")
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// AnalyzeImpact reports who is affected when the module at path changes.
func (s *Session) AnalyzeImpact(path string) (graph.ImpactReport, error) {
	id, err := s.moduleByPath(path)
	if err != nil {
		return graph.ImpactReport{}, err
	}
	return s.graph.AnalyzeImpact(id)
}

func (s *Session) FormatImpactReport(report graph.ImpactReport) string {
	var b strings.Builder

	b.WriteString("Impact Analysis\n")
	b.WriteString("==============\n")
	fmt.Fprintf(&b, "Target module: %s\n", report.TargetPath)
	if mod, ok := s.graph.Module(report.Target); ok && mod.FilePath != "" {
		fmt.Fprintf(&b, "Target file: %s\n", mod.FilePath)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Direct dependents (%d)\n", len(report.DirectDependents))
	for _, name := range s.graph.Names(report.DirectDependents) {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Transitive impact (%d)\n", len(report.TransitiveDependents))
	for _, name := range s.graph.Names(report.TransitiveDependents) {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Exported symbols (%d)\n", len(report.ExportedSymbols))
	for _, sym := range report.ExportedSymbols {
		fmt.Fprintf(&b, "- %s\n", sym)
	}
	return b.String()
}
