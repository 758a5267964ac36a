package graph

import (
	"fmt"
	"slices"
	"strings"

	"modgraph/internal/engine/source"
	"modgraph/internal/engine/symbols"
	"modgraph/internal/engine/visibility"
)

// PathSeparator joins module path segments.
const PathSeparator = "::"

// ModuleID is an opaque, never reused handle into a ModuleGraph.
type ModuleID uint32

func (id ModuleID) String() string {
	return fmt.Sprintf("m%d", uint32(id))
}

// Module is one compilation unit. The graph owns it; everything else refers
// to it by ModuleID.
type Module struct {
	ID       ModuleID
	Name     string
	Path     []string
	FilePath string
	// AST is the parser's handle for the module. The graph never inspects it.
	AST      any
	Exports  *symbols.Table
	Imports  []ImportDecl
	Compiled bool
}

// NewModule builds an unregistered module with an empty symbol table.
func NewModule(name string, path []string, filePath string) *Module {
	return &Module{
		Name:     name,
		Path:     slices.Clone(path),
		FilePath: filePath,
		Exports:  symbols.NewTable(),
	}
}

func (m *Module) PathString() string {
	return JoinPath(m.Path)
}

type ImportKind uint8

const (
	// ImportModule brings the module itself into scope: `use a::b;`.
	ImportModule ImportKind = iota
	// ImportGlob brings every export into scope: `use a::b::*;`.
	ImportGlob
	// ImportSelective brings the listed names into scope: `use a::b::{x, y};`.
	ImportSelective
)

func (k ImportKind) String() string {
	switch k {
	case ImportModule:
		return "module"
	case ImportGlob:
		return "glob"
	case ImportSelective:
		return "selective"
	default:
		return "invalid"
	}
}

type ImportDecl struct {
	Path  []string
	Alias string
	Kind  ImportKind
	Names []string
	// Visibility above Private marks a re-export (`pub use`).
	Visibility visibility.Visibility
	Span       source.Span
}

// LocalName is the name the import binds in the importing module for module
// imports: the alias if given, else the last path segment.
func (d ImportDecl) LocalName() string {
	if d.Alias != "" {
		return d.Alias
	}
	if len(d.Path) == 0 {
		return ""
	}
	return d.Path[len(d.Path)-1]
}

func JoinPath(path []string) string {
	return strings.Join(path, PathSeparator)
}
