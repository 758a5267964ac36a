package parser

import (
	"fmt"

	coreerrors "modgraph/internal/core/errors"
	"modgraph/internal/engine/graph"
	"modgraph/internal/engine/source"
	"modgraph/internal/engine/symbols"
)

// File is the parser's view of one source file: its imports and top-level
// declarations. Declarations carry no module path; the session assigns it.
type File struct {
	Path    string
	Imports []graph.ImportDecl
	Symbols []symbols.Symbol
	Lines   int
}

type SyntaxError struct {
	Span    source.Span
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

func (e *SyntaxError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeParse }
