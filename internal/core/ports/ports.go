package ports

import (
	"context"

	"modgraph/internal/engine/graph"
	"modgraph/internal/engine/parser"
)

// CodeParser turns one source file into its imports and top-level
// declarations.
type CodeParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
}

// ExportSink records the modules, edges and exports of a finished
// compilation and returns the run id it was stored under.
type ExportSink interface {
	RecordGraph(ctx context.Context, project string, g *graph.ModuleGraph) (string, error)
}
