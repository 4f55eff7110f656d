package graph

import (
	"errors"
	"fmt"
)

// ErrNotBipartite — граф нельзя раскрасить в два цвета.
var ErrNotBipartite = errors.New("graph is not bipartite")

// ColorConflictError — ребро, оба конца которого получили один цвет.
type ColorConflictError struct {
	Source string
	Target string
}

// Error реализует интерфейс error.
func (e *ColorConflictError) Error() string {
	if e.Source == e.Target {
		return fmt.Sprintf("self-loop on node %q", e.Source)
	}
	return fmt.Sprintf("nodes %q and %q are adjacent but share a color", e.Source, e.Target)
}

// Unwrap возвращает ErrNotBipartite.
func (e *ColorConflictError) Unwrap() error {
	return ErrNotBipartite
}

// Component — компонента связности, разбитая на два цветовых класса.
type Component struct {
	// U — узлы цвета первого узла компоненты, в порядке обхода.
	U []string

	// V — узлы второго цвета, в порядке обхода.
	V []string
}

// Bipartition раскрашивает неориентированное представление графа в два
// цвета обходом в ширину, компонента за компонентой в порядке вставки.
//
// Первый узел каждой компоненты получает цвет U. Петля или нечётный цикл
// дают *ColorConflictError.
func (g *Graph) Bipartition() ([]Component, error) {
	color := make(map[string]int, len(g.order))
	components := make([]Component, 0)

	for _, start := range g.order {
		if _, seen := color[start]; seen {
			continue
		}

		comp := Component{U: []string{start}, V: make([]string, 0)}
		color[start] = 0
		queue := []string{start}

		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]

			for _, nb := range g.Neighbors(id) {
				if nb == id {
					return nil, &ColorConflictError{Source: id, Target: nb}
				}
				c, seen := color[nb]
				if !seen {
					color[nb] = 1 - color[id]
					if color[nb] == 0 {
						comp.U = append(comp.U, nb)
					} else {
						comp.V = append(comp.V, nb)
					}
					queue = append(queue, nb)
					continue
				}
				if c == color[id] {
					return nil, &ColorConflictError{Source: id, Target: nb}
				}
			}
		}

		components = append(components, comp)
	}

	return components, nil
}
