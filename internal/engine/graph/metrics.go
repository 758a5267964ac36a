package graph

// ModuleMetrics summarises one module's place in the graph.
type ModuleMetrics struct {
	// Depth is the longest dependency chain below the module, counting a
	// strongly connected component as one step.
	Depth           int
	FanIn           int
	FanOut          int
	Exports         int
	ImportanceScore float64 // (FanIn*2) + FanOut + (Exports*0.5)
}

func (g *ModuleGraph) ComputeModuleMetrics() map[ModuleID]ModuleMetrics {
	components := g.StronglyConnectedComponents()
	componentOf := make(map[ModuleID]int, len(g.modules))
	for i, component := range components {
		for _, id := range component {
			componentOf[id] = i
		}
	}

	componentEdges := make(map[int]map[int]bool, len(components))
	for _, from := range g.IDs() {
		fromComp := componentOf[from]
		for _, to := range g.dependencies[from] {
			toComp := componentOf[to]
			if fromComp == toComp {
				continue
			}
			if componentEdges[fromComp] == nil {
				componentEdges[fromComp] = make(map[int]bool)
			}
			componentEdges[fromComp][toComp] = true
		}
	}

	depthByComp := make(map[int]int, len(components))
	var computeDepth func(int) int
	computeDepth = func(comp int) int {
		if depth, ok := depthByComp[comp]; ok {
			return depth
		}
		maxDepth := 0
		for next := range componentEdges[comp] {
			if candidate := 1 + computeDepth(next); candidate > maxDepth {
				maxDepth = candidate
			}
		}
		depthByComp[comp] = maxDepth
		return maxDepth
	}

	metrics := make(map[ModuleID]ModuleMetrics, len(g.modules))
	for id, mod := range g.modules {
		exports := 0
		if mod.Exports != nil {
			exports = len(mod.Exports.Exports())
		}
		fanIn := len(g.dependents[id])
		fanOut := len(g.dependencies[id])

		metrics[id] = ModuleMetrics{
			Depth:           computeDepth(componentOf[id]),
			FanIn:           fanIn,
			FanOut:          fanOut,
			Exports:         exports,
			ImportanceScore: importanceScore(fanIn, fanOut, exports),
		}
	}
	return metrics
}

func importanceScore(fanIn, fanOut, exports int) float64 {
	return float64(fanIn*2) + float64(fanOut) + float64(exports)*0.5
}
