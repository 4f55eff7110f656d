package engine

import (
	"github.com/shaiso/daxgen/internal/graph"
)

// pipelineGraph — a.fits → T1 → b.fits → T2 → c.fits.
func pipelineGraph() *graph.Graph {
	g := graph.New()
	g.AddNode("a", map[string]any{"lfn": "a.fits", "pfn": "file:///data/a.fits"})
	g.AddNode("T1", map[string]any{"exec_name": "calexp", "exec_args": "-i a.fits -o b.fits"})
	g.AddNode("b", map[string]any{"lfn": "b.fits"})
	g.AddNode("T2", map[string]any{"exec_name": "coadd", "exec_args": "b.fits"})
	g.AddNode("c", map[string]any{"lfn": "c.fits"})

	g.AddEdge("a", "T1")
	g.AddEdge("T1", "b")
	g.AddEdge("b", "T2")
	g.AddEdge("T2", "c")
	return g
}

// classified возвращает граф после классификации.
func classified(g *graph.Graph) *graph.Graph {
	if _, err := Classify(g); err != nil {
		panic(err)
	}
	return g
}
