package graph

import "slices"

// ImpactReport lists the modules affected when Target changes.
type ImpactReport struct {
	Target               ModuleID
	TargetPath           string
	DirectDependents     []ModuleID
	TransitiveDependents []ModuleID
	// ExportedSymbols is empty when nothing depends on Target.
	ExportedSymbols []string
}

// AnalyzeImpact walks the reverse edges from target. Direct dependents are not
// repeated in TransitiveDependents.
func (g *ModuleGraph) AnalyzeImpact(target ModuleID) (ImpactReport, error) {
	mod, ok := g.modules[target]
	if !ok {
		return ImpactReport{}, &ImpactTargetError{Target: target}
	}

	report := ImpactReport{
		Target:     target,
		TargetPath: mod.PathString(),
	}

	direct := slices.Clone(g.dependents[target])
	slices.Sort(direct)
	report.DirectDependents = direct

	seen := map[ModuleID]bool{target: true}
	for _, id := range direct {
		seen[id] = true
	}

	queue := slices.Clone(direct)
	transitive := make([]ModuleID, 0)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range g.dependents[curr] {
			if seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
			transitive = append(transitive, next)
		}
	}
	slices.Sort(transitive)
	report.TransitiveDependents = transitive

	if len(direct) > 0 && mod.Exports != nil {
		for _, sym := range mod.Exports.Exports() {
			report.ExportedSymbols = append(report.ExportedSymbols, sym.Name)
		}
	}

	return report, nil
}
