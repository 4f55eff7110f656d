package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/daxgen/internal/dax"
	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/engine"
	"github.com/shaiso/daxgen/internal/graphio"
)

// NodeInfo — узел графа в отчёте inspect.
type NodeInfo struct {
	ID    string         `json:"id"`
	Class string         `json:"class"`
	Attrs map[string]any `json:"attrs"`
}

// InspectReport — отчёт inspect для графа или DAX.
type InspectReport struct {
	Source       string     `json:"source"`
	Kind         string     `json:"kind"` // graph, dax, catalog
	Nodes        []NodeInfo `json:"nodes,omitempty"`
	Components   int        `json:"components,omitempty"`
	Jobs         int        `json:"jobs"`
	Dependencies int        `json:"dependencies"`
	Roots        []string   `json:"roots,omitempty"`
	Levels       [][]string `json:"levels,omitempty"`
	Acyclic      bool       `json:"acyclic"`

	Catalog []CatalogEntry `json:"catalog,omitempty"`
}

// CatalogEntry — строка каталога реплик.
type CatalogEntry struct {
	LFN  string `json:"lfn"`
	URL  string `json:"url"`
	Site string `json:"site"`
}

// NewInspectCmd создаёт команду inspect.
func NewInspectCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect SOURCE",
		Short: "Show graph classification, jobs and dependency levels",
		Long: `Inspect prints what the generator sees in SOURCE.

For a graph: every node with its class and attributes, job and
dependency counts and topological levels. For a .dax document: its
jobs, referential integrity and levels. For a .rc/.txt replica
catalog: its entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				source := args[0]

				var (
					report *InspectReport
					err    error
				)
				switch graphio.Ext(source) {
				case "dax":
					report, err = inspectDAX(ctx, app, source)
				case "rc", "txt":
					report, err = inspectCatalog(ctx, app, source)
				default:
					report, err = inspectGraph(ctx, app, source)
				}
				if err != nil {
					return err
				}

				printReport(out, report)
				return nil
			})
		},
	}
}

func inspectGraph(ctx context.Context, app *App, source string) (*InspectReport, error) {
	svc, err := app.Service(ctx)
	if err != nil {
		return nil, err
	}
	g, err := svc.Loader().Load(ctx, source)
	if err != nil {
		return nil, err
	}

	classified := g.Copy()
	classification, err := engine.Classify(classified)
	if err != nil {
		return nil, err
	}

	report := &InspectReport{
		Source:     source,
		Kind:       "graph",
		Components: len(classification.Partitions),
	}
	for _, n := range classified.Nodes() {
		attrs := maps.Clone(n.Attrs)
		delete(attrs, domain.AttrNodeType)
		report.Nodes = append(report.Nodes, NodeInfo{ID: n.ID, Class: n.Type.String(), Attrs: attrs})
	}

	wf, err := engine.NewGenerator(app.GeneratorConfig()).Generate(ctx, g)
	if err != nil {
		return nil, err
	}
	fillOrder(report, wf.Jobs, wf.Dependencies)
	return report, nil
}

func inspectDAX(ctx context.Context, app *App, source string) (*InspectReport, error) {
	rc, err := openSource(ctx, app, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := dax.ReadWorkflow(rc)
	if err != nil {
		return nil, err
	}
	if err := doc.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	jobs := make([]*domain.Job, len(doc.Jobs))
	for i, j := range doc.Jobs {
		jobs[i] = &domain.Job{ID: j.ID, Name: j.Name, NodeLabel: j.NodeLabel}
	}
	var deps []domain.Dependency
	for _, c := range doc.Children {
		for _, p := range c.Parents {
			deps = append(deps, domain.Dependency{Parent: p.Ref, Child: c.Ref})
		}
	}

	report := &InspectReport{Source: source, Kind: "dax"}
	fillOrder(report, jobs, deps)
	return report, nil
}

func inspectCatalog(ctx context.Context, app *App, source string) (*InspectReport, error) {
	rc, err := openSource(ctx, app, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	catalog, err := dax.ReadReplicaCatalog(rc)
	if err != nil {
		return nil, err
	}

	report := &InspectReport{Source: source, Kind: "catalog", Acyclic: true}
	for _, f := range catalog.Files() {
		for _, rep := range f.Replicas {
			report.Catalog = append(report.Catalog, CatalogEntry{LFN: f.Name, URL: rep.URL, Site: rep.Site})
		}
	}
	return report, nil
}

func openSource(ctx context.Context, app *App, source string) (io.ReadCloser, error) {
	router, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return router.Open(ctx, source)
}

// fillOrder заполняет счётчики, корни и уровни. Цикл не считается
// ошибкой inspect: отчёт помечается как acyclic=false.
func fillOrder(report *InspectReport, jobs []*domain.Job, deps []domain.Dependency) {
	report.Jobs = len(jobs)
	report.Dependencies = len(deps)

	dag, err := engine.BuildDAG(jobs, deps)
	if err != nil {
		return
	}

	report.Acyclic = true
	for _, n := range dag.RootNodes {
		report.Roots = append(report.Roots, n.ID)
	}
	report.Levels = dag.Levels()
}

func printReport(out *Output, report *InspectReport) {
	if out.JSONMode() {
		out.JSON(report)
		return
	}

	switch report.Kind {
	case "catalog":
		rows := make([][]string, len(report.Catalog))
		for i, e := range report.Catalog {
			rows[i] = []string{e.LFN, e.URL, e.Site}
		}
		out.Table([]string{"LFN", "URL", "SITE"}, rows)
		return
	case "graph":
		rows := make([][]string, len(report.Nodes))
		for i, n := range report.Nodes {
			rows[i] = []string{n.ID, n.Class, formatAttrs(n.Attrs)}
		}
		out.Table([]string{"NODE", "CLASS", "ATTRIBUTES"}, rows)
		out.Section("Workflow")
	}

	out.Table(
		[]string{"JOBS", "DEPENDENCIES", "ROOTS", "ACYCLIC"},
		[][]string{{
			strconv.Itoa(report.Jobs),
			strconv.Itoa(report.Dependencies),
			strconv.Itoa(len(report.Roots)),
			strconv.FormatBool(report.Acyclic),
		}},
	)

	if len(report.Levels) > 0 {
		out.Section("Levels")
		rows := make([][]string, len(report.Levels))
		for i, level := range report.Levels {
			rows[i] = []string{strconv.Itoa(i), strings.Join(level, ", ")}
		}
		out.Table([]string{"LEVEL", "JOBS"}, rows)
	}
}

// formatAttrs печатает атрибуты как key=value по алфавиту.
func formatAttrs(attrs map[string]any) string {
	keys := slices.Sorted(maps.Keys(attrs))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, attrs[k])
	}
	return strings.Join(parts, " ")
}
