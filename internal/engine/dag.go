package engine

import (
	"fmt"

	"github.com/shaiso/daxgen/internal/domain"
)

// Node — узел в DAG задач.
type Node struct {
	// Job — задача workflow.
	Job *domain.Job

	// ID — идентификатор узла (совпадает с Job.ID).
	ID string

	// InDegree — количество входящих рёбер (зависимостей).
	InDegree int

	// DependsOn — узлы, от которых зависит этот узел.
	DependsOn []*Node

	// Dependents — узлы, которые зависят от этого узла.
	Dependents []*Node
}

// DAG — направленный граф задач workflow.
type DAG struct {
	// Nodes — все узлы графа (jobID → Node).
	Nodes map[string]*Node

	// RootNodes — узлы без зависимостей, в порядке задач.
	RootNodes []*Node

	// Order — топологически отсортированный список узлов.
	Order []*Node

	// ids — порядок задач, как в workflow.
	ids []string
}

// BuildDAG строит DAG из задач и рёбер workflow.
//
// Возвращает ErrCyclicDependency, если рёбра образуют цикл.
func BuildDAG(jobs []*domain.Job, deps []domain.Dependency) (*DAG, error) {
	dag := &DAG{
		Nodes:     make(map[string]*Node, len(jobs)),
		RootNodes: make([]*Node, 0),
		ids:       make([]string, 0, len(jobs)),
	}

	// Первый проход: создаём все узлы
	for _, job := range jobs {
		dag.Nodes[job.ID] = &Node{
			Job:        job,
			ID:         job.ID,
			DependsOn:  make([]*Node, 0),
			Dependents: make([]*Node, 0),
		}
		dag.ids = append(dag.ids, job.ID)
	}

	// Второй проход: связываем узлы по зависимостям
	for _, d := range deps {
		parent, ok := dag.Nodes[d.Parent]
		if !ok {
			return nil, fmt.Errorf("dependency %s -> %s: unknown parent job", d.Parent, d.Child)
		}
		child, ok := dag.Nodes[d.Child]
		if !ok {
			return nil, fmt.Errorf("dependency %s -> %s: unknown child job", d.Parent, d.Child)
		}
		dag.addEdge(parent, child)
	}

	dag.findRootNodes()

	order, err := dag.topologicalSort()
	if err != nil {
		return nil, err
	}
	dag.Order = order

	return dag, nil
}

// BuildWorkflowDAG строит DAG для готового workflow.
func BuildWorkflowDAG(wf *domain.Workflow) (*DAG, error) {
	return BuildDAG(wf.Jobs, wf.Dependencies)
}

// addEdge добавляет ребро между узлами.
// Дополнительно проверяет на дубликаты, чтобы избежать двойного учета InDegree.
func (d *DAG) addEdge(from, to *Node) {
	for _, dep := range to.DependsOn {
		if dep.ID == from.ID {
			return // уже связаны
		}
	}
	from.Dependents = append(from.Dependents, to)
	to.DependsOn = append(to.DependsOn, from)
	to.InDegree++
}

// findRootNodes находит узлы без входящих рёбер.
func (d *DAG) findRootNodes() {
	d.RootNodes = make([]*Node, 0)
	for _, id := range d.ids {
		if node := d.Nodes[id]; node.InDegree == 0 {
			d.RootNodes = append(d.RootNodes, node)
		}
	}
}

// topologicalSort выполняет топологическую сортировку (алгоритм Кана).
// Возвращает ошибку, если обнаружен цикл.
func (d *DAG) topologicalSort() ([]*Node, error) {
	// Копируем inDegree, чтобы не модифицировать оригинал
	inDegree := make(map[string]int, len(d.Nodes))
	for id, node := range d.Nodes {
		inDegree[id] = node.InDegree
	}

	// Очередь узлов с inDegree = 0
	queue := make([]*Node, len(d.RootNodes))
	copy(queue, d.RootNodes)

	order := make([]*Node, 0, len(d.Nodes))

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		// Уменьшаем inDegree у зависимых узлов
		for _, dependent := range node.Dependents {
			inDegree[dependent.ID]--
			if inDegree[dependent.ID] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	// Если не все узлы обработаны — есть цикл
	if len(order) != len(d.Nodes) {
		return nil, ErrCyclicDependency
	}

	return order, nil
}

// Levels группирует задачи по уровням: уровень 0 — корни, уровень N —
// задачи, самый длинный путь до которых от корня равен N.
func (d *DAG) Levels() [][]string {
	level := make(map[string]int, len(d.Nodes))
	maxLevel := -1

	for _, node := range d.Order {
		l := 0
		for _, dep := range node.DependsOn {
			if level[dep.ID]+1 > l {
				l = level[dep.ID] + 1
			}
		}
		level[node.ID] = l
		maxLevel = max(maxLevel, l)
	}

	levels := make([][]string, maxLevel+1)
	for _, id := range d.ids {
		l := level[id]
		levels[l] = append(levels[l], id)
	}
	return levels
}

// GetNode возвращает узел по ID.
func (d *DAG) GetNode(id string) *Node {
	return d.Nodes[id]
}

// Size возвращает количество узлов в DAG.
func (d *DAG) Size() int {
	return len(d.Nodes)
}

// Order возвращает ID задач в топологическом порядке.
//
// Возвращает ErrCyclicDependency, если рёбра образуют цикл.
func Order(jobs []*domain.Job, deps []domain.Dependency) ([]string, error) {
	dag, err := BuildDAG(jobs, deps)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(dag.Order))
	for i, n := range dag.Order {
		ids[i] = n.ID
	}
	return ids, nil
}
