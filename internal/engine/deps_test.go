package engine

import (
	"testing"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

func resolve(t *testing.T, g *graph.Graph) []domain.Dependency {
	t.Helper()
	return ResolveDependencies(g, buildJobs(t, g, JobOptions{}))
}

func TestResolveDependencies_Pipeline(t *testing.T) {
	deps := resolve(t, pipelineGraph())

	if len(deps) != 1 {
		t.Fatalf("expected 1 dependency, got %d: %v", len(deps), deps)
	}
	if deps[0] != (domain.Dependency{Parent: "T1", Child: "T2"}) {
		t.Errorf("expected T1 -> T2, got %+v", deps[0])
	}
}

func TestResolveDependencies_SharedFilesDeduplicated(t *testing.T) {
	// T1 производит f1 и f2, T2 читает оба
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in"})
	g.AddNode("T1", map[string]any{"exec_name": "p"})
	g.AddNode("f1", map[string]any{"lfn": "f1"})
	g.AddNode("f2", map[string]any{"lfn": "f2"})
	g.AddNode("T2", map[string]any{"exec_name": "c"})
	g.AddEdge("in", "T1")
	g.AddEdge("T1", "f1")
	g.AddEdge("T1", "f2")
	g.AddEdge("f1", "T2")
	g.AddEdge("f2", "T2")

	deps := resolve(t, g)
	if len(deps) != 1 {
		t.Fatalf("expected 1 dependency, got %v", deps)
	}
}

func TestResolveDependencies_IgnoredFileStillOrders(t *testing.T) {
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in"})
	g.AddNode("T1", map[string]any{"exec_name": "p"})
	g.AddNode("tmp", map[string]any{"lfn": "tmp", "ignore": true})
	g.AddNode("T2", map[string]any{"exec_name": "c"})
	g.AddEdge("in", "T1")
	g.AddEdge("T1", "tmp")
	g.AddEdge("tmp", "T2")

	deps := resolve(t, g)
	if len(deps) != 1 || deps[0].Parent != "T1" || deps[0].Child != "T2" {
		t.Errorf("expected T1 -> T2, got %v", deps)
	}
}

func TestResolveDependencies_FanIn(t *testing.T) {
	g := graph.New()
	g.AddNode("x", map[string]any{"lfn": "x"})
	g.AddNode("A", map[string]any{"exec_name": "a"})
	g.AddNode("B", map[string]any{"exec_name": "b"})
	g.AddNode("C", map[string]any{"exec_name": "c"})
	g.AddNode("fa", map[string]any{"lfn": "fa"})
	g.AddNode("fb", map[string]any{"lfn": "fb"})
	g.AddEdge("x", "A")
	g.AddEdge("x", "B")
	g.AddEdge("A", "fa")
	g.AddEdge("B", "fb")
	g.AddEdge("fa", "C")
	g.AddEdge("fb", "C")

	deps := resolve(t, g)
	want := []domain.Dependency{
		{Parent: "A", Child: "C"},
		{Parent: "B", Child: "C"},
	}
	if len(deps) != len(want) {
		t.Fatalf("expected %v, got %v", want, deps)
	}
	for i := range want {
		if deps[i] != want[i] {
			t.Errorf("dependency %d: expected %+v, got %+v", i, want[i], deps[i])
		}
	}
}

func TestResolveDependencies_NoProducers(t *testing.T) {
	g := graph.New()
	g.AddNode("x", map[string]any{"lfn": "x"})
	g.AddNode("A", map[string]any{"exec_name": "a"})
	g.AddNode("B", map[string]any{"exec_name": "b"})
	g.AddEdge("x", "A")
	g.AddEdge("x", "B")

	if deps := resolve(t, g); len(deps) != 0 {
		t.Errorf("expected no dependencies, got %v", deps)
	}
}
