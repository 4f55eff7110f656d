package graph

import (
	"maps"

	"github.com/shaiso/daxgen/internal/domain"
)

// Node — узел графа с произвольными атрибутами.
type Node struct {
	// ID — идентификатор узла.
	ID string

	// Attrs — атрибуты узла (lfn, pfn, exec_name, ...).
	Attrs map[string]any

	// Type — класс узла. Имеет смысл только после классификации.
	Type domain.NodeType

	// Labeled — true, если класс уже назначен классификатором.
	Labeled bool
}

// SetType назначает класс узлу и дублирует его в атрибут node_type.
func (n *Node) SetType(t domain.NodeType) {
	n.Type = t
	n.Labeled = true
	n.Attrs[domain.AttrNodeType] = int(t)
}

// IsFile возвращает true для узлов, классифицированных как файл.
func (n *Node) IsFile() bool {
	return n.Labeled && n.Type == domain.NodeFile
}

// IsTask возвращает true для узлов, классифицированных как задача.
func (n *Node) IsTask() bool {
	return n.Labeled && n.Type == domain.NodeTask
}

// Edge — направленное ребро.
type Edge struct {
	Source string
	Target string
}

// Graph — направленный граф с сохранением порядка вставки.
//
// Порядок узлов и списков смежности совпадает с порядком добавления,
// поэтому результат генерации детерминирован для одного и того же
// входного документа. Кратные рёбра схлопываются.
type Graph struct {
	nodes map[string]*Node
	order []string
	succ  map[string][]string
	pred  map[string][]string
	edges int
}

// New создаёт пустой граф.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		order: make([]string, 0),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
	}
}

// AddNode добавляет узел. Если узел уже есть, атрибуты объединяются.
func (g *Graph) AddNode(id string, attrs map[string]any) *Node {
	if n, exists := g.nodes[id]; exists {
		maps.Copy(n.Attrs, attrs)
		return n
	}

	n := &Node{ID: id, Attrs: make(map[string]any, len(attrs))}
	maps.Copy(n.Attrs, attrs)
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// AddEdge добавляет ребро source → target.
// Отсутствующие концы создаются без атрибутов.
func (g *Graph) AddEdge(source, target string) {
	g.AddNode(source, nil)
	g.AddNode(target, nil)

	for _, s := range g.succ[source] {
		if s == target {
			return // уже связаны
		}
	}
	g.succ[source] = append(g.succ[source], target)
	g.pred[target] = append(g.pred[target], source)
	g.edges++
}

// Node возвращает узел по ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has проверяет наличие узла.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes возвращает узлы в порядке добавления.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Len возвращает количество узлов.
func (g *Graph) Len() int {
	return len(g.order)
}

// EdgeCount возвращает количество рёбер.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Edges возвращает все рёбра в порядке узлов-источников.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, id := range g.order {
		for _, t := range g.succ[id] {
			edges = append(edges, Edge{Source: id, Target: t})
		}
	}
	return edges
}

// Successors возвращает ID узлов, в которые ведут рёбра из id.
func (g *Graph) Successors(id string) []string {
	return g.succ[id]
}

// Predecessors возвращает ID узлов, из которых ведут рёбра в id.
func (g *Graph) Predecessors(id string) []string {
	return g.pred[id]
}

// Neighbors возвращает соседей без учёта направления: сначала
// предшественники, затем последователи.
func (g *Graph) Neighbors(id string) []string {
	out := make([]string, 0, len(g.pred[id])+len(g.succ[id]))
	out = append(out, g.pred[id]...)
	out = append(out, g.succ[id]...)
	return out
}

// Copy возвращает глубокую копию графа (атрибуты копируются поверхностно).
func (g *Graph) Copy() *Graph {
	c := New()
	for _, id := range g.order {
		n := g.nodes[id]
		cn := c.AddNode(id, n.Attrs)
		cn.Type = n.Type
		cn.Labeled = n.Labeled
	}
	for _, e := range g.Edges() {
		c.AddEdge(e.Source, e.Target)
	}
	return c
}

// Files возвращает узлы, классифицированные как файлы.
func (g *Graph) Files() []*Node {
	return g.byType(domain.NodeFile)
}

// Tasks возвращает узлы, классифицированные как задачи.
func (g *Graph) Tasks() []*Node {
	return g.byType(domain.NodeTask)
}

func (g *Graph) byType(t domain.NodeType) []*Node {
	nodes := make([]*Node, 0)
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Labeled && n.Type == t {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
