package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dependency — ребро порядка между задачами: Child ждёт Parent.
type Dependency struct {
	// Parent — ID задачи-производителя.
	Parent string `json:"parent"`

	// Child — ID задачи-потребителя.
	Child string `json:"child"`
}

// Workflow — абстрактный workflow, готовый к сериализации.
//
// Создаётся одним запуском генератора и не изменяется после записи.
type Workflow struct {
	// Name — имя workflow (атрибут name документа).
	Name string `json:"name"`

	// RunID — идентификатор запуска генерации.
	RunID uuid.UUID `json:"run_id"`

	// CreatedAt — время генерации.
	CreatedAt time.Time `json:"created_at"`

	// Jobs — задачи в порядке узлов графа.
	Jobs []*Job `json:"jobs"`

	// Dependencies — рёбра порядка, без дубликатов.
	Dependencies []Dependency `json:"dependencies"`

	// Catalog — каталог файлов, принадлежащий запуску.
	Catalog *Catalog `json:"-"`
}

// Job возвращает задачу по ID.
func (w *Workflow) Job(id string) (*Job, bool) {
	for _, j := range w.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return nil, false
}

// ParentsOf возвращает ID родителей задачи в порядке рёбер.
func (w *Workflow) ParentsOf(id string) []string {
	parents := make([]string, 0)
	for _, d := range w.Dependencies {
		if d.Child == id {
			parents = append(parents, d.Parent)
		}
	}
	return parents
}

// Roots возвращает ID задач без входящих рёбер.
func (w *Workflow) Roots() []string {
	hasParent := make(map[string]bool, len(w.Dependencies))
	for _, d := range w.Dependencies {
		hasParent[d.Child] = true
	}

	roots := make([]string, 0)
	for _, j := range w.Jobs {
		if !hasParent[j.ID] {
			roots = append(roots, j.ID)
		}
	}
	return roots
}

// Stats — сводка по workflow для логов, метрик и уведомлений.
type Stats struct {
	Jobs         int `json:"jobs"`
	Dependencies int `json:"dependencies"`
	Files        int `json:"files"`
	Replicas     int `json:"replicas"`
}

// Stats считает сводку по workflow.
func (w *Workflow) Stats() Stats {
	s := Stats{
		Jobs:         len(w.Jobs),
		Dependencies: len(w.Dependencies),
	}
	if w.Catalog != nil {
		s.Files = w.Catalog.Len()
		s.Replicas = w.Catalog.ReplicaCount()
	}
	return s
}
