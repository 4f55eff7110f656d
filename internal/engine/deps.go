package engine

import (
	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

// ResolveDependencies вычисляет рёбра порядка между задачами.
//
// Родители задачи — объединение предшественников всех её входных
// файлов в графе (производителей этих файлов). Учитываются все
// узлы-файлы, включая помеченные ignore. Других источников порядка нет.
// Каждая пара (родитель, потомок) встречается не больше одного раза,
// сколько бы общих файлов её ни породило.
func ResolveDependencies(g *graph.Graph, jobs []*domain.Job) []domain.Dependency {
	deps := make([]domain.Dependency, 0)

	for _, job := range jobs {
		seen := make(map[string]bool)

		for _, fileID := range g.Predecessors(job.ID) {
			for _, parentID := range g.Predecessors(fileID) {
				if seen[parentID] {
					continue // уже связаны
				}
				seen[parentID] = true
				deps = append(deps, domain.Dependency{Parent: parentID, Child: job.ID})
			}
		}
	}

	return deps
}
