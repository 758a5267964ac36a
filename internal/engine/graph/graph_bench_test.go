package graph

import (
	"fmt"
	"testing"
)

// ringGraph builds n modules where module i imports i+1, closing the ring
// when closed is set.
func ringGraph(n int, closed bool) *ModuleGraph {
	g := New()
	ids := make([]ModuleID, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("mod%d", i)
		ids[i] = g.AddModule(NewModule(name, []string{"bench", name}, name+".jag"))
	}
	for i := 0; i < n-1; i++ {
		g.AddDependency(ids[i], ids[i+1])
	}
	if closed {
		g.AddDependency(ids[n-1], ids[0])
	}
	return g
}

func BenchmarkAddModule(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ringGraph(100, false)
	}
}

func BenchmarkFindCycle(b *testing.B) {
	g := ringGraph(500, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, found := g.FindCycle(); !found {
			b.Fatal("expected a cycle")
		}
	}
}

func BenchmarkTopologicalOrder(b *testing.B) {
	g := ringGraph(1000, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.TopologicalOrder(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStronglyConnectedComponents(b *testing.B) {
	g := ringGraph(1000, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.StronglyConnectedComponents()
	}
}

func BenchmarkComputeModuleMetrics(b *testing.B) {
	g := ringGraph(1000, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.ComputeModuleMetrics()
	}
}
