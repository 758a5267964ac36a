// Package graph owns the modules of one compilation and the dependency edges
// between them, and runs the cycle, strongly-connected-component and
// topological-order algorithms that drive compilation ordering.
package graph

import (
	"slices"
	"sort"

	"modgraph/internal/shared/observability"
)

// ModuleGraph is an arena of modules addressed by ModuleID with forward
// (dependencies) and reverse (dependents) adjacency lists. It is a
// single-writer structure: callers serialise AddModule and AddDependency.
type ModuleGraph struct {
	modules map[ModuleID]*Module

	// Relationships
	dependencies map[ModuleID][]ModuleID // consumer -> dependencies
	dependents   map[ModuleID][]ModuleID // dependency -> consumers

	pathIndex map[string]ModuleID // joined path -> id
	nextID    ModuleID
	edgeCount int
}

func New() *ModuleGraph {
	return &ModuleGraph{
		modules:      make(map[ModuleID]*Module),
		dependencies: make(map[ModuleID][]ModuleID),
		dependents:   make(map[ModuleID][]ModuleID),
		pathIndex:    make(map[string]ModuleID),
	}
}

// AddModule registers mod under the next free id and returns it.
func (g *ModuleGraph) AddModule(mod *Module) ModuleID {
	id := g.nextID
	g.nextID++
	mod.ID = id

	g.pathIndex[mod.PathString()] = id
	g.dependencies[id] = []ModuleID{}
	g.dependents[id] = []ModuleID{}
	g.modules[id] = mod

	observability.GraphModules.Set(float64(len(g.modules)))
	return id
}

// AddDependency records that from depends on to. A repeated pair is ignored
// and reported as false. Both ids must already be registered.
func (g *ModuleGraph) AddDependency(from, to ModuleID) bool {
	if _, ok := g.modules[from]; !ok {
		panic("graph: AddDependency from unregistered module " + from.String())
	}
	if _, ok := g.modules[to]; !ok {
		panic("graph: AddDependency to unregistered module " + to.String())
	}
	if slices.Contains(g.dependencies[from], to) {
		return false
	}

	g.dependencies[from] = append(g.dependencies[from], to)
	g.dependents[to] = append(g.dependents[to], from)
	g.edgeCount++

	observability.GraphEdges.Set(float64(g.edgeCount))
	return true
}

func (g *ModuleGraph) Module(id ModuleID) (*Module, bool) {
	mod, ok := g.modules[id]
	return mod, ok
}

// MustModule is Module for ids the caller obtained from this graph.
func (g *ModuleGraph) MustModule(id ModuleID) *Module {
	mod, ok := g.modules[id]
	if !ok {
		panic("graph: unknown module " + id.String())
	}
	return mod
}

func (g *ModuleGraph) FindByPath(path []string) (ModuleID, bool) {
	id, ok := g.pathIndex[JoinPath(path)]
	return id, ok
}

// FindByName returns the lowest-id module whose name is name.
func (g *ModuleGraph) FindByName(name string) (ModuleID, bool) {
	for _, id := range g.IDs() {
		if g.modules[id].Name == name {
			return id, true
		}
	}
	return 0, false
}

// IDs returns every module id in ascending order.
func (g *ModuleGraph) IDs() []ModuleID {
	ids := make([]ModuleID, 0, len(g.modules))
	for id := range g.modules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Modules returns every module in ascending id order.
func (g *ModuleGraph) Modules() []*Module {
	ids := g.IDs()
	out := make([]*Module, len(ids))
	for i, id := range ids {
		out[i] = g.modules[id]
	}
	return out
}

func (g *ModuleGraph) Dependencies(id ModuleID) []ModuleID {
	return slices.Clone(g.dependencies[id])
}

func (g *ModuleGraph) Dependents(id ModuleID) []ModuleID {
	return slices.Clone(g.dependents[id])
}

func (g *ModuleGraph) Len() int {
	return len(g.modules)
}

func (g *ModuleGraph) EdgeCount() int {
	return g.edgeCount
}

func (g *ModuleGraph) MarkCompiled(id ModuleID) {
	if mod, ok := g.modules[id]; ok {
		mod.Compiled = true
	}
}

// Roots are modules with no dependencies.
func (g *ModuleGraph) Roots() []ModuleID {
	var out []ModuleID
	for _, id := range g.IDs() {
		if len(g.dependencies[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Leaves are modules nothing depends on.
func (g *ModuleGraph) Leaves() []ModuleID {
	var out []ModuleID
	for _, id := range g.IDs() {
		if len(g.dependents[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Name renders id as its joined module path, falling back to the raw id.
func (g *ModuleGraph) Name(id ModuleID) string {
	if mod, ok := g.modules[id]; ok && len(mod.Path) > 0 {
		return mod.PathString()
	}
	return id.String()
}

func (g *ModuleGraph) Names(ids []ModuleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Name(id)
	}
	return out
}
