package graph

import (
	"slices"

	"modgraph/internal/shared/observability"
)

type color uint8

const (
	white color = iota // unvisited
	gray               // on the active DFS path
	black              // finished
)

// dfsFrame is one level of the explicit DFS stack; next indexes the
// dependency to visit when the frame resumes.
type dfsFrame struct {
	node ModuleID
	next int
}

// FindCycle runs a three-colour depth-first search from every unvisited
// module in ascending id order and returns the first cycle found as a closed
// path (first element equals last). It reports false for an acyclic graph.
func (g *ModuleGraph) FindCycle() ([]ModuleID, bool) {
	colors := make(map[ModuleID]color, len(g.modules))
	parent := make(map[ModuleID]ModuleID)

	for _, start := range g.IDs() {
		if colors[start] != white {
			continue
		}
		if from, to, found := g.findBackEdge(start, colors, parent); found {
			cycle := []ModuleID{to}
			for curr := from; curr != to; curr = parent[curr] {
				cycle = append(cycle, curr)
			}
			cycle = append(cycle, to)
			slices.Reverse(cycle)

			observability.CyclesDetectedTotal.Inc()
			return cycle, true
		}
	}
	return nil, false
}

// findBackEdge walks from start and returns the first edge from -> to whose
// target is gray. The stack is explicit so long import chains cannot exhaust
// the goroutine stack.
func (g *ModuleGraph) findBackEdge(start ModuleID, colors map[ModuleID]color, parent map[ModuleID]ModuleID) (ModuleID, ModuleID, bool) {
	colors[start] = gray
	stack := []dfsFrame{{node: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		deps := g.dependencies[top.node]

		if top.next >= len(deps) {
			colors[top.node] = black
			stack = stack[:len(stack)-1]
			continue
		}

		dep := deps[top.next]
		top.next++

		switch colors[dep] {
		case gray:
			return top.node, dep, true
		case white:
			parent[dep] = top.node
			colors[dep] = gray
			stack = append(stack, dfsFrame{node: dep})
		}
	}
	return 0, 0, false
}

// CheckAcyclic returns a *CycleError for the first cycle found.
func (g *ModuleGraph) CheckAcyclic() error {
	if cycle, found := g.FindCycle(); found {
		return g.newCycleError(cycle)
	}
	return nil
}

// FindImportChain returns the shortest dependency chain from -> ... -> to,
// breaking ties by ascending module id.
func (g *ModuleGraph) FindImportChain(from, to ModuleID) ([]ModuleID, bool) {
	if _, ok := g.modules[from]; !ok {
		return nil, false
	}
	if _, ok := g.modules[to]; !ok {
		return nil, false
	}
	if from == to {
		return []ModuleID{from}, true
	}

	queue := []ModuleID{from}
	visited := map[ModuleID]bool{from: true}
	prev := make(map[ModuleID]ModuleID)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		neighbors := slices.Clone(g.dependencies[curr])
		slices.Sort(neighbors)

		for _, next := range neighbors {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr

			if next == to {
				path := []ModuleID{to}
				for node := to; node != from; {
					node = prev[node]
					path = append(path, node)
				}
				slices.Reverse(path)
				return path, true
			}

			queue = append(queue, next)
		}
	}

	return nil, false
}
