package graph

// Snapshot — плоское представление графа для сериализации
// (gob, msgpack). Порядок узлов и рёбер сохраняется.
type Snapshot struct {
	Directed bool           `msgpack:"directed"`
	Nodes    []SnapshotNode `msgpack:"nodes"`
	Edges    []SnapshotEdge `msgpack:"edges"`
}

// SnapshotNode — узел в Snapshot.
type SnapshotNode struct {
	ID    string         `msgpack:"id"`
	Attrs map[string]any `msgpack:"attrs,omitempty"`
}

// SnapshotEdge — ребро в Snapshot.
type SnapshotEdge struct {
	Source string `msgpack:"source"`
	Target string `msgpack:"target"`
}

// Snapshot возвращает плоское представление графа.
func (g *Graph) Snapshot() *Snapshot {
	s := &Snapshot{
		Directed: true,
		Nodes:    make([]SnapshotNode, 0, len(g.order)),
		Edges:    make([]SnapshotEdge, 0, g.edges),
	}
	for _, n := range g.Nodes() {
		s.Nodes = append(s.Nodes, SnapshotNode{ID: n.ID, Attrs: n.Attrs})
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, SnapshotEdge{Source: e.Source, Target: e.Target})
	}
	return s
}

// FromSnapshot восстанавливает граф из плоского представления.
func FromSnapshot(s *Snapshot) *Graph {
	g := New()
	if s == nil {
		return g
	}
	for _, n := range s.Nodes {
		g.AddNode(n.ID, n.Attrs)
	}
	for _, e := range s.Edges {
		g.AddEdge(e.Source, e.Target)
	}
	return g
}
