package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/daxgen/internal/graph"
	"github.com/shaiso/daxgen/internal/telemetry"
)

func newTestGenerator(cfg Config) *Generator {
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Metrics = telemetry.NewMetrics()
	return NewGenerator(cfg)
}

func TestGenerator_Generate(t *testing.T) {
	gen := newTestGenerator(Config{Name: "pipeline"})

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	runID := uuid.MustParse("2f1b6c39-4f0f-4c70-9d7b-4d9c6a8f0e11")
	gen.now = func() time.Time { return fixed }
	gen.newID = func() uuid.UUID { return runID }

	src := pipelineGraph()
	wf, err := gen.Generate(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wf.Name != "pipeline" || wf.RunID != runID || !wf.CreatedAt.Equal(fixed) {
		t.Errorf("unexpected header: %s %s %s", wf.Name, wf.RunID, wf.CreatedAt)
	}
	if len(wf.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(wf.Jobs))
	}
	if len(wf.Dependencies) != 1 || wf.Dependencies[0].Parent != "T1" || wf.Dependencies[0].Child != "T2" {
		t.Errorf("expected T1 -> T2, got %v", wf.Dependencies)
	}

	stats := wf.Stats()
	if stats.Files != 3 || stats.Replicas != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	// Исходный граф не классифицирован
	for _, n := range src.Nodes() {
		if n.Labeled {
			t.Errorf("source node %s should not be labeled", n.ID)
		}
	}
}

func TestGenerator_Defaults(t *testing.T) {
	gen := NewGenerator(Config{})
	if gen.name != DefaultWorkflowName {
		t.Errorf("expected default name %q, got %q", DefaultWorkflowName, gen.name)
	}
	if gen.defaultSite != "condorpool" {
		t.Errorf("expected default site condorpool, got %q", gen.defaultSite)
	}
}

func TestGenerator_DefaultSite(t *testing.T) {
	gen := newTestGenerator(Config{DefaultSite: "local"})

	wf, err := gen.Generate(context.Background(), pipelineGraph())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := wf.Catalog.Get("a.fits")
	if a.Replicas[0].Site != "local" {
		t.Errorf("expected site local, got %s", a.Replicas[0].Site)
	}
}

func TestGenerator_Vars(t *testing.T) {
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in"})
	g.AddNode("T", map[string]any{"exec_name": "x", "exec_args": "{{ .Vars.mode }} {{ .Env.ROOT }}"})
	g.AddEdge("in", "T")

	gen := newTestGenerator(Config{
		Vars: map[string]string{"mode": "fast"},
		Env:  map[string]string{"ROOT": "/r"},
	})

	wf, err := gen.Generate(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := wf.Jobs[0].CommandLine(); got != "fast /r" {
		t.Errorf("unexpected command line: %q", got)
	}
}

func TestGenerator_NoVarsLeavesBraces(t *testing.T) {
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in"})
	g.AddNode("T", map[string]any{"exec_name": "x", "exec_args": "{{ .Vars.mode }}"})
	g.AddEdge("in", "T")

	wf, err := newTestGenerator(Config{}).Generate(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := wf.Jobs[0].CommandLine(); got != "{{ .Vars.mode }}" {
		t.Errorf("unexpected command line: %q", got)
	}
}

func TestGenerator_NotBipartite(t *testing.T) {
	g := graph.New()
	g.AddNode("a", map[string]any{"lfn": "a"})
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	wf, err := newTestGenerator(Config{}).Generate(context.Background(), g)
	if !errors.Is(err, ErrNotBipartite) {
		t.Fatalf("expected ErrNotBipartite, got %v", err)
	}
	if wf != nil {
		t.Error("no workflow should be returned on error")
	}
}

func TestGenerator_StrictAcyclic(t *testing.T) {
	// T1 → f1 → T2 → f2 → T1
	g := graph.New()
	g.AddNode("f1", map[string]any{"lfn": "f1"})
	g.AddNode("T1", map[string]any{"exec_name": "a"})
	g.AddNode("f2", map[string]any{"lfn": "f2"})
	g.AddNode("T2", map[string]any{"exec_name": "b"})
	g.AddEdge("T1", "f1")
	g.AddEdge("f1", "T2")
	g.AddEdge("T2", "f2")
	g.AddEdge("f2", "T1")

	// Без проверки цикл попадает в результат как есть
	wf, err := newTestGenerator(Config{}).Generate(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wf.Dependencies) != 2 {
		t.Errorf("expected 2 dependencies, got %v", wf.Dependencies)
	}

	_, err = newTestGenerator(Config{StrictAcyclic: true}).Generate(context.Background(), g)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestGenerator_EmptyGraph(t *testing.T) {
	wf, err := newTestGenerator(Config{}).Generate(context.Background(), graph.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wf.Jobs) != 0 || len(wf.Dependencies) != 0 || wf.Catalog.Len() != 0 {
		t.Error("empty graph should produce an empty workflow")
	}
}

func TestGenerator_IndependentRuns(t *testing.T) {
	gen := newTestGenerator(Config{})

	first, err := gen.Generate(context.Background(), pipelineGraph())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := graph.New()
	g.AddNode("z", map[string]any{"lfn": "z"})
	g.AddNode("T", map[string]any{"exec_name": "x"})
	g.AddEdge("z", "T")

	second, err := gen.Generate(context.Background(), g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.Catalog.Has("a.fits") || first.Catalog.Has("z") {
		t.Error("catalogs should not leak between runs")
	}
	if first.RunID == second.RunID {
		t.Error("each run should get its own id")
	}
}
