package graph

import "slices"

// TopologicalOrder returns every module with dependencies before their
// dependents. A graph with a cycle fails with *CycleError.
func (g *ModuleGraph) TopologicalOrder() ([]ModuleID, error) {
	ids := g.IDs()

	// An edge consumer -> dependency counts against the dependency, so the
	// queue starts with modules nothing imports.
	inDegree := make(map[ModuleID]int, len(ids))
	for _, id := range ids {
		for _, dep := range g.dependencies[id] {
			inDegree[dep]++
		}
	}

	queue := make([]ModuleID, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]ModuleID, 0, len(ids))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, dep := range g.dependencies[curr] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(ids) {
		cycle, _ := g.FindCycle()
		return nil, g.newCycleError(cycle)
	}

	slices.Reverse(order)
	return order, nil
}
