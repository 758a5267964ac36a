package graph

import (
	"fmt"
	"strings"
)

// DOT renders the graph as Graphviz source. Modules and edges on any of the
// given cycles are highlighted; stdlib modules are drawn outside the project
// cluster.
func (g *ModuleGraph) DOT(cycles [][]ModuleID) string {
	var buf strings.Builder

	buf.WriteString("digraph modules {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	cycleEdges := make(map[ModuleID]map[ModuleID]bool)
	inCycle := make(map[ModuleID]bool)
	for _, cycle := range cycles {
		for i := 0; i+1 < len(cycle); i++ {
			from, to := cycle[i], cycle[i+1]
			if cycleEdges[from] == nil {
				cycleEdges[from] = make(map[ModuleID]bool)
			}
			cycleEdges[from][to] = true
			inCycle[from] = true
			inCycle[to] = true
		}
	}

	var project, stdlib []*Module
	for _, mod := range g.Modules() {
		if isStdlibModule(mod) {
			stdlib = append(stdlib, mod)
		} else {
			project = append(project, mod)
		}
	}

	buf.WriteString("  subgraph cluster_project {\n")
	buf.WriteString("    label=\"Project Modules\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=\"whitesmoke\";\n")
	buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\"];\n")
	for _, mod := range project {
		exports := 0
		if mod.Exports != nil {
			exports = len(mod.Exports.Exports())
		}
		label := fmt.Sprintf("%s\\n(%d exports)", g.Name(mod.ID), exports)
		if inCycle[mod.ID] {
			fmt.Fprintf(&buf, "    %s [label=%s, fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", dotQuote(g.Name(mod.ID)), dotQuote(label))
		} else {
			fmt.Fprintf(&buf, "    %s [label=%s, color=\"darkslategrey\"];\n", dotQuote(g.Name(mod.ID)), dotQuote(label))
		}
	}
	buf.WriteString("  }\n\n")

	if len(stdlib) > 0 {
		buf.WriteString("  node [fillcolor=\"gainsboro\", style=\"rounded,filled\", color=\"grey\"];\n")
		for _, mod := range stdlib {
			fmt.Fprintf(&buf, "  %s;\n", dotQuote(g.Name(mod.ID)))
		}
		buf.WriteString("\n")
	}

	for _, from := range g.IDs() {
		for _, to := range g.dependencies[from] {
			switch {
			case cycleEdges[from][to]:
				fmt.Fprintf(&buf, "  %s -> %s [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n", dotQuote(g.Name(from)), dotQuote(g.Name(to)))
			case isStdlibModule(g.modules[to]):
				fmt.Fprintf(&buf, "  %s -> %s [color=\"grey\", style=dashed];\n", dotQuote(g.Name(from)), dotQuote(g.Name(to)))
			default:
				fmt.Fprintf(&buf, "  %s -> %s [color=\"forestgreen\", penwidth=1.8];\n", dotQuote(g.Name(from)), dotQuote(g.Name(to)))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func isStdlibModule(mod *Module) bool {
	if mod == nil || len(mod.Path) == 0 {
		return false
	}
	return mod.Path[0] == "stdlib"
}

// dotQuote quotes s as a DOT ID, leaving label escapes such as \n intact.
func dotQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
