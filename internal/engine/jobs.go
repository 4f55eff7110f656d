package engine

import (
	"fmt"
	"strings"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

// JobOptions — параметры построения задач.
type JobOptions struct {
	// Args — контекст шаблонов для exec_args. nil отключает рендеринг.
	Args *ArgContext
}

// BuildJobs строит по одной задаче на каждый узел-задачу графа.
//
// Граф должен быть классифицирован, а каталог построен по тому же графу.
func BuildJobs(g *graph.Graph, catalog *domain.Catalog, opts JobOptions) ([]*domain.Job, error) {
	tasks := g.Tasks()
	jobs := make([]*domain.Job, 0, len(tasks))

	for _, node := range tasks {
		job, err := buildJob(g, catalog, node, opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// buildJob строит задачу для одного узла.
func buildJob(g *graph.Graph, catalog *domain.Catalog, node *graph.Node, opts JobOptions) (*domain.Job, error) {
	name, ok := node.StringAttr(domain.AttrExecName)
	if !ok {
		return nil, NewMissingAttributeError(node.ID, domain.AttrExecName)
	}

	job := &domain.Job{
		ID:        node.ID,
		Name:      name,
		NodeLabel: NodeLabel(name, node.ID),
	}

	// Аргументы командной строки с подстановкой файлов
	if raw, ok := node.StringAttr(domain.AttrExecArgs); ok && raw != "" {
		if opts.Args != nil {
			rendered, err := Render(raw, opts.Args.ForNode(node.ID, node.Attrs))
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", node.ID, err)
			}
			raw = rendered
		}
		job.Arguments = SubstituteArgs(strings.Fields(raw), catalog)
	}

	// Входы задачи
	for _, id := range g.Predecessors(node.ID) {
		file, ok, err := declaredFile(g, catalog, id)
		if err != nil {
			return nil, err
		}
		if ok {
			job.Uses = append(job.Uses, domain.Use{File: file, Link: domain.LinkInput})
		}
	}

	// Выходы задачи
	for _, id := range g.Successors(node.ID) {
		file, ok, err := declaredFile(g, catalog, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		job.Uses = append(job.Uses, domain.Use{File: file, Link: domain.LinkOutput})

		fileNode, _ := g.Node(id)
		if mask, ok := fileNode.IntAttr(domain.AttrStreams); ok {
			streams := domain.StreamMask(mask)
			if streams.Has(domain.StreamStdout) {
				job.Stdout = file
			}
			if streams.Has(domain.StreamStderr) {
				job.Stderr = file
			}
		}
	}

	// Файлы для stderr и stdout по умолчанию
	if job.Stderr == nil {
		file := domain.NewFile(job.NodeLabel + ".err")
		job.Uses = append(job.Uses, domain.Use{File: file, Link: domain.LinkOutput})
		job.Stderr = file
	}
	if job.Stdout == nil {
		file := domain.NewFile(job.NodeLabel + ".out")
		job.Uses = append(job.Uses, domain.Use{File: file, Link: domain.LinkOutput})
		job.Stdout = file
	}

	return job, nil
}

// declaredFile возвращает запись каталога для соседнего узла-файла.
// ok=false для узлов с флагом ignore.
func declaredFile(g *graph.Graph, catalog *domain.Catalog, id string) (*domain.File, bool, error) {
	node, exists := g.Node(id)
	if !exists || !node.IsFile() {
		return nil, false, ErrUnclassified
	}
	if node.BoolAttr(domain.AttrIgnore) {
		return nil, false, nil
	}

	name, ok := node.StringAttr(domain.AttrLFN)
	if !ok {
		return nil, false, NewMissingAttributeError(node.ID, domain.AttrLFN)
	}
	file, ok := catalog.Get(name)
	if !ok {
		return nil, false, fmt.Errorf("node %s: file %q is not in the catalog", node.ID, name)
	}
	return file, true, nil
}

// SubstituteArgs заменяет токены, совпадающие с логическими именами
// каталога, ссылками на записи каталога.
//
// Совпадение только точное. Для каждого логического имени заменяется
// первое вхождение токена, остальные остаются литералами. Порядок
// аргументов сохраняется.
func SubstituteArgs(tokens []string, catalog *domain.Catalog) []domain.Argument {
	args := make([]domain.Argument, len(tokens))
	substituted := make(map[string]bool)

	for i, tok := range tokens {
		if file, ok := catalog.Get(tok); ok && !substituted[tok] {
			args[i] = domain.Argument{File: file}
			substituted[tok] = true
			continue
		}
		args[i] = domain.Argument{Literal: tok}
	}

	return args
}

// NodeLabel возвращает метку узла задачи: <exec_name>_<id>.
func NodeLabel(name, id string) string {
	return name + "_" + id
}
