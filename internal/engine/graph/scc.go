package graph

import (
	"cmp"
	"slices"
)

// StronglyConnectedComponents partitions the modules with Kosaraju's
// algorithm. Singletons are included; each component is sorted by id and
// components are ordered by their smallest id.
func (g *ModuleGraph) StronglyConnectedComponents() [][]ModuleID {
	ids := g.IDs()

	visited := make(map[ModuleID]bool, len(ids))
	finish := make([]ModuleID, 0, len(ids))
	for _, id := range ids {
		if !visited[id] {
			finish = g.postOrder(id, visited, finish)
		}
	}

	assigned := make(map[ModuleID]bool, len(ids))
	var components [][]ModuleID
	for i := len(finish) - 1; i >= 0; i-- {
		root := finish[i]
		if assigned[root] {
			continue
		}
		component := g.collectTransposed(root, assigned)
		slices.Sort(component)
		components = append(components, component)
	}

	slices.SortFunc(components, func(a, b []ModuleID) int {
		return cmp.Compare(a[0], b[0])
	})
	return components
}

// CircularGroups returns the components with more than one module, plus
// single modules that import themselves.
func (g *ModuleGraph) CircularGroups() [][]ModuleID {
	var groups [][]ModuleID
	for _, component := range g.StronglyConnectedComponents() {
		if len(component) > 1 || slices.Contains(g.dependencies[component[0]], component[0]) {
			groups = append(groups, component)
		}
	}
	return groups
}

// postOrder appends the DFS finish order of everything reachable from start
// along dependency edges.
func (g *ModuleGraph) postOrder(start ModuleID, visited map[ModuleID]bool, finish []ModuleID) []ModuleID {
	visited[start] = true
	stack := []dfsFrame{{node: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		deps := g.dependencies[top.node]
		if top.next >= len(deps) {
			finish = append(finish, top.node)
			stack = stack[:len(stack)-1]
			continue
		}
		dep := deps[top.next]
		top.next++
		if !visited[dep] {
			visited[dep] = true
			stack = append(stack, dfsFrame{node: dep})
		}
	}
	return finish
}

// collectTransposed gathers every unassigned module reaching root, walking
// the reverse (dependents) edges.
func (g *ModuleGraph) collectTransposed(root ModuleID, assigned map[ModuleID]bool) []ModuleID {
	assigned[root] = true
	component := []ModuleID{root}
	stack := []ModuleID{root}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.dependents[curr] {
			if assigned[next] {
				continue
			}
			assigned[next] = true
			component = append(component, next)
			stack = append(stack, next)
		}
	}
	return component
}
