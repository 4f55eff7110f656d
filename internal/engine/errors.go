package engine

import (
	"errors"
	"fmt"
)

// Ошибки формы графа и атрибутов узлов.
var (
	// ErrNotBipartite — граф нельзя разбить на файлы и задачи.
	ErrNotBipartite = errors.New("graph is not bipartite")

	// ErrMissingAttribute — у узла нет обязательного атрибута.
	ErrMissingAttribute = errors.New("mandatory attribute is missing")

	// ErrUnclassified — граф не прошёл классификацию перед построением.
	ErrUnclassified = errors.New("graph nodes are not classified")
)

// Ошибки порядка задач.
var (
	// ErrCyclicDependency — обнаружен цикл в зависимостях задач.
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// Ошибки рендеринга аргументов.
var (
	// ErrTemplateParse — ошибка парсинга шаблона аргументов.
	ErrTemplateParse = errors.New("template parse failed")

	// ErrTemplateRender — ошибка рендеринга шаблона аргументов.
	ErrTemplateRender = errors.New("template render failed")
)

// GraphShapeError — граф не двудольный.
type GraphShapeError struct {
	Source string // первый конец конфликтного ребра
	Target string // второй конец конфликтного ребра
	Err    error  // исходная ошибка раскраски
}

// Error реализует интерфейс error.
func (e *GraphShapeError) Error() string {
	if e.Err != nil {
		return "graph is not bipartite: " + e.Err.Error()
	}
	return "graph is not bipartite"
}

// Unwrap возвращает базовую ошибку.
func (e *GraphShapeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotBipartite}
	}
	return []error{ErrNotBipartite, e.Err}
}

// MissingAttributeError — у узла нет обязательного атрибута.
type MissingAttributeError struct {
	NodeID    string // ID узла графа
	Attribute string // имя атрибута (lfn или exec_name)
}

// Error реализует интерфейс error.
func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("node %s: mandatory attribute %q is missing", e.NodeID, e.Attribute)
}

// Unwrap возвращает ErrMissingAttribute.
func (e *MissingAttributeError) Unwrap() error {
	return ErrMissingAttribute
}

// NewMissingAttributeError создаёт ошибку отсутствующего атрибута.
func NewMissingAttributeError(nodeID, attr string) *MissingAttributeError {
	return &MissingAttributeError{NodeID: nodeID, Attribute: attr}
}
