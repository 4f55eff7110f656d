package engine

import (
	"errors"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

// fileAttrs — обязательные атрибуты, которые есть только у файлов.
var fileAttrs = []string{domain.AttrLFN}

// Partition — результат классификации одной компоненты связности.
type Partition struct {
	// Sample — узел, по атрибутам которого выбран класс.
	Sample string

	// SampleIsFile — true, если у Sample есть все файловые атрибуты.
	// false означает слабый вариант по умолчанию: класс Sample считается
	// задачами без дополнительной проверки.
	SampleIsFile bool

	// Files — узлы-файлы компоненты.
	Files []string

	// Tasks — узлы-задачи компоненты.
	Tasks []string
}

// Classification — результат классификации графа.
type Classification struct {
	Partitions []Partition
}

// FileCount возвращает количество узлов-файлов.
func (c *Classification) FileCount() int {
	n := 0
	for _, p := range c.Partitions {
		n += len(p.Files)
	}
	return n
}

// TaskCount возвращает количество узлов-задач.
func (c *Classification) TaskCount() int {
	n := 0
	for _, p := range c.Partitions {
		n += len(p.Tasks)
	}
	return n
}

// Classify разбивает узлы графа на файлы и задачи и помечает каждый узел.
//
// Граф раскрашивается в два цвета по компонентам связности. В каждой
// компоненте берётся первый узел класса U: если у него есть lfn, класс U —
// файлы, а V — задачи, иначе наоборот. Эвристика предполагает, что набор
// атрибутов однороден внутри класса; задача с ключом lfn будет
// классифицирована неверно.
//
// Возвращает *GraphShapeError, если граф не двудольный. В этом случае
// ни один узел не помечается.
func Classify(g *graph.Graph) (*Classification, error) {
	components, err := g.Bipartition()
	if err != nil {
		var conflict *graph.ColorConflictError
		if errors.As(err, &conflict) {
			return nil, &GraphShapeError{Source: conflict.Source, Target: conflict.Target, Err: err}
		}
		return nil, &GraphShapeError{Err: err}
	}

	result := &Classification{Partitions: make([]Partition, 0, len(components))}

	for _, comp := range components {
		sample := comp.U[0]
		node, _ := g.Node(sample)

		p := Partition{Sample: sample, SampleIsFile: hasAll(node, fileAttrs)}
		if p.SampleIsFile {
			p.Files, p.Tasks = comp.U, comp.V
		} else {
			p.Files, p.Tasks = comp.V, comp.U
		}

		for _, id := range p.Files {
			n, _ := g.Node(id)
			n.SetType(domain.NodeFile)
		}
		for _, id := range p.Tasks {
			n, _ := g.Node(id)
			n.SetType(domain.NodeTask)
		}

		result.Partitions = append(result.Partitions, p)
	}

	return result, nil
}

// hasAll проверяет, что у узла есть все перечисленные атрибуты.
func hasAll(n *graph.Node, attrs []string) bool {
	for _, a := range attrs {
		if !n.HasAttr(a) {
			return false
		}
	}
	return true
}
