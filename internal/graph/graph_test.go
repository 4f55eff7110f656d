package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/daxgen/internal/domain"
)

func TestAddNode_MergesAttrs(t *testing.T) {
	g := New()
	g.AddNode("a", map[string]any{"lfn": "a.fits"})
	g.AddNode("a", map[string]any{"pfn": "file:///a.fits"})

	require.Equal(t, 1, g.Len())
	n, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, "a.fits", n.Attrs["lfn"])
	assert.Equal(t, "file:///a.fits", n.Attrs["pfn"])
}

func TestAddEdge_CreatesEndpointsAndDedups(t *testing.T) {
	g := New()
	g.AddEdge("a", "T1")
	g.AddEdge("a", "T1")
	g.AddEdge("T1", "b")

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"T1"}, g.Successors("a"))
	assert.Equal(t, []string{"a"}, g.Predecessors("T1"))
	assert.Equal(t, []string{"a", "b"}, g.Neighbors("T1"))
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"z", "a", "m"} {
		g.AddNode(id, nil)
	}

	ids := make([]string, 0)
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestCopy_IsIndependent(t *testing.T) {
	g := New()
	g.AddNode("a", map[string]any{"lfn": "a.fits"})
	g.AddEdge("a", "T1")

	c := g.Copy()
	c.AddEdge("T1", "b")
	n, _ := c.Node("a")
	n.SetType(domain.NodeFile)

	assert.Equal(t, 2, g.Len())
	orig, _ := g.Node("a")
	assert.False(t, orig.Labeled)
	assert.NotContains(t, orig.Attrs, domain.AttrNodeType)
}

func TestSetType_WritesNodeTypeAttr(t *testing.T) {
	g := New()
	n := g.AddNode("T1", map[string]any{"exec_name": "process"})
	n.SetType(domain.NodeTask)

	assert.True(t, n.IsTask())
	assert.False(t, n.IsFile())
	assert.Equal(t, 1, n.Attrs[domain.AttrNodeType])
	assert.Len(t, g.Tasks(), 1)
	assert.Empty(t, g.Files())
}

func TestBipartition_Chain(t *testing.T) {
	g := New()
	g.AddEdge("a", "T1")
	g.AddEdge("T1", "b")
	g.AddEdge("b", "T2")

	comps, err := g.Bipartition()
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, []string{"a", "b"}, comps[0].U)
	assert.Equal(t, []string{"T1", "T2"}, comps[0].V)
}

func TestBipartition_Components(t *testing.T) {
	g := New()
	g.AddEdge("T1", "x")
	g.AddNode("lonely", nil)
	g.AddEdge("y", "T2")

	comps, err := g.Bipartition()
	require.NoError(t, err)
	require.Len(t, comps, 3)
	assert.Equal(t, []string{"T1"}, comps[0].U)
	assert.Equal(t, []string{"lonely"}, comps[1].U)
	assert.Empty(t, comps[1].V)
	assert.Equal(t, []string{"y"}, comps[2].U)
}

func TestBipartition_OddCycle(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	_, err := g.Bipartition()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotBipartite))

	var conflict *ColorConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestBipartition_SelfLoop(t *testing.T) {
	g := New()
	g.AddEdge("a", "a")

	_, err := g.Bipartition()
	assert.ErrorIs(t, err, ErrNotBipartite)
}

func TestAttrs_Coercion(t *testing.T) {
	n := &Node{ID: "x", Attrs: map[string]any{
		"s":      "text",
		"f":      float64(3),
		"frac":   2.5,
		"i8":     int8(2),
		"bs":     "true",
		"bn":     uint8(1),
		"list":   "a, b,,c",
		"anylst": []any{"x", "y"},
	}}

	s, ok := n.StringAttr("s")
	assert.True(t, ok)
	assert.Equal(t, "text", s)

	i, ok := n.IntAttr("f")
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	_, ok = n.IntAttr("frac")
	assert.False(t, ok)

	i, ok = n.IntAttr("i8")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	assert.True(t, n.BoolAttr("bs"))
	assert.True(t, n.BoolAttr("bn"))
	assert.False(t, n.BoolAttr("missing"))

	l, ok := n.ListAttr("list")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "", "c"}, l)

	l, ok = n.ListAttr("anylst")
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, l)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := New()
	g.AddNode("a", map[string]any{"lfn": "a.fits"})
	g.AddNode("T1", map[string]any{"exec_name": "process"})
	g.AddEdge("a", "T1")

	restored := FromSnapshot(g.Snapshot())
	assert.Equal(t, g.Len(), restored.Len())
	assert.Equal(t, g.Edges(), restored.Edges())
	n, ok := restored.Node("a")
	require.True(t, ok)
	assert.Equal(t, "a.fits", n.Attrs["lfn"])
}
