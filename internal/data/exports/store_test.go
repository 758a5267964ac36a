package exports

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	coreerrors "modgraph/internal/core/errors"
	"modgraph/internal/engine/graph"
	"modgraph/internal/engine/source"
	"modgraph/internal/engine/symbols"
)

func sampleGraph(t *testing.T) *graph.ModuleGraph {
	t.Helper()
	g := graph.New()

	core := graph.NewModule("core", []string{"core"}, "src/core.jag")
	if err := core.Exports.Define(symbols.NewFunction("parse", nil, symbols.Named{Name: "Ast"},
		source.Span{File: "src/core.jag", Line: 3, Column: 1}).Public().InModule(core.Path).WithDocs("Parses input.")); err != nil {
		t.Fatalf("define parse: %v", err)
	}
	if err := core.Exports.Define(symbols.NewVariable("LIMIT", symbols.Named{Name: "i64"}, false,
		source.Span{File: "src/core.jag", Line: 1, Column: 1}).Public().InModule(core.Path)); err != nil {
		t.Fatalf("define LIMIT: %v", err)
	}
	if err := core.Exports.Define(symbols.NewFunction("helper", nil, nil,
		source.Span{File: "src/core.jag", Line: 9, Column: 1}).InModule(core.Path)); err != nil {
		t.Fatalf("define helper: %v", err)
	}

	app := graph.NewModule("main", []string{"main"}, "src/main.jag")
	coreID := g.AddModule(core)
	appID := g.AddModule(app)
	g.AddDependency(appID, coreID)
	g.MarkCompiled(coreID)
	return g
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "exports.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordGraphAndExportsOf(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	runID, err := store.RecordGraph(ctx, "demo", sampleGraph(t))
	if err != nil {
		t.Fatalf("record graph: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run id")
	}

	got, err := store.ExportsOf(ctx, runID, "core")
	if err != nil {
		t.Fatalf("exports of core: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exports (private helper excluded), got %d: %+v", len(got), got)
	}
	if got[0].Name != "LIMIT" || got[1].Name != "parse" {
		t.Fatalf("expected exports sorted by name, got %q, %q", got[0].Name, got[1].Name)
	}
	parse := got[1]
	if parse.Kind != "function" || parse.Visibility != "pub" || parse.DefinedIn != "core" {
		t.Fatalf("unexpected parse row: %+v", parse)
	}
	if parse.Line != 3 || parse.File != "src/core.jag" || parse.Docs != "Parses input." {
		t.Fatalf("unexpected parse location: %+v", parse)
	}
	if got[0].Type != "i64" {
		t.Fatalf("expected LIMIT type i64, got %q", got[0].Type)
	}

	deps, err := store.DependenciesOf(ctx, runID, "main")
	if err != nil {
		t.Fatalf("dependencies of main: %v", err)
	}
	if len(deps) != 1 || deps[0] != "core" {
		t.Fatalf("expected main -> core, got %v", deps)
	}
}

func TestStore_ExportsOfUnknownModule(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	runID, err := store.RecordGraph(ctx, "demo", sampleGraph(t))
	if err != nil {
		t.Fatalf("record graph: %v", err)
	}

	_, err = store.ExportsOf(ctx, runID, "missing")
	if !coreerrors.IsCode(err, coreerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestStore_RunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := store.RecordGraph(ctx, "demo", sampleGraph(t))
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	second, err := store.RecordGraph(ctx, "demo", sampleGraph(t))
	if err != nil {
		t.Fatalf("record second: %v", err)
	}
	if _, err := store.RecordGraph(ctx, "other", graph.New()); err != nil {
		t.Fatalf("record other: %v", err)
	}

	runs, err := store.Runs(ctx, "demo")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs for demo, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Fatalf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].ModuleCount != 2 || runs[0].EdgeCount != 1 {
		t.Fatalf("unexpected counts: %+v", runs[0])
	}
	if !runs[1].Timestamp.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected timestamp: %s", runs[1].Timestamp)
	}
}

func TestOpen_RejectsDirectoryAndEmptyPath(t *testing.T) {
	if _, err := Open("  "); !coreerrors.IsCode(err, coreerrors.CodeValidationError) {
		t.Fatalf("expected validation error for empty path, got %v", err)
	}
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "db"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(filepath.Join(dir, "db")); !coreerrors.IsCode(err, coreerrors.CodeValidationError) {
		t.Fatalf("expected validation error for directory path, got %v", err)
	}
}

func TestOpen_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	runID, err := store.RecordGraph(context.Background(), "demo", sampleGraph(t))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.Runs(context.Background(), "demo")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Fatalf("expected run %s after reopen, got %+v", runID, runs)
	}
}

func TestStore_ReExportedModuleNextToLocalName(t *testing.T) {
	g := graph.New()
	utils := graph.NewModule("utils", []string{"utils"}, "src/utils.jag")
	if err := utils.Exports.Define(symbols.NewFunction("trim", nil, nil,
		source.Span{File: "src/utils.jag", Line: 1, Column: 1}).Public().InModule(utils.Path)); err != nil {
		t.Fatalf("define utils trim: %v", err)
	}
	facade := graph.NewModule("facade", []string{"facade"}, "src/facade.jag")
	if err := facade.Exports.Define(symbols.NewFunction("trim", nil, nil,
		source.Span{File: "src/facade.jag", Line: 2, Column: 1}).Public().InModule(facade.Path)); err != nil {
		t.Fatalf("define facade trim: %v", err)
	}
	facade.Exports.MergeExports(utils.Exports, "utils")
	utilsID := g.AddModule(utils)
	facadeID := g.AddModule(facade)
	g.AddDependency(facadeID, utilsID)

	store := openStore(t)
	ctx := context.Background()
	runID, err := store.RecordGraph(ctx, "demo", g)
	if err != nil {
		t.Fatalf("record graph: %v", err)
	}

	got, err := store.ExportsOf(ctx, runID, "facade")
	if err != nil {
		t.Fatalf("exports of facade: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exports, got %d: %+v", len(got), got)
	}
	if got[0].Name != "trim" || got[0].DefinedIn != "facade" {
		t.Errorf("unexpected local export: %+v", got[0])
	}
	if got[1].Name != "utils::trim" || got[1].DefinedIn != "utils" {
		t.Errorf("unexpected re-export: %+v", got[1])
	}
}
