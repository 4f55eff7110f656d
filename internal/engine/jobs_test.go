package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

func buildJobs(t *testing.T, g *graph.Graph, opts JobOptions) []*domain.Job {
	t.Helper()

	classified(g)
	catalog, err := BuildCatalog(g, "")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	jobs, err := BuildJobs(g, catalog, opts)
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	return jobs
}

func usesOf(job *domain.Job) []string {
	out := make([]string, len(job.Uses))
	for i, u := range job.Uses {
		out[i] = string(u.Link) + ":" + u.File.Name
	}
	return out
}

func TestBuildJobs_Pipeline(t *testing.T) {
	jobs := buildJobs(t, pipelineGraph(), JobOptions{})

	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	t1 := jobs[0]
	if t1.ID != "T1" || t1.Name != "calexp" || t1.NodeLabel != "calexp_T1" {
		t.Errorf("unexpected job header: %+v", t1)
	}

	// -i a.fits -o b.fits: файлы подставлены, литералы сохранены
	if len(t1.Arguments) != 4 {
		t.Fatalf("expected 4 arguments, got %d", len(t1.Arguments))
	}
	if t1.Arguments[0].Literal != "-i" || t1.Arguments[2].Literal != "-o" {
		t.Error("flags should stay literal")
	}
	if !t1.Arguments[1].IsFile() || t1.Arguments[1].File.Name != "a.fits" {
		t.Error("a.fits should be a file reference")
	}
	if !t1.Arguments[3].IsFile() || t1.Arguments[3].File.Name != "b.fits" {
		t.Error("b.fits should be a file reference")
	}
	if t1.CommandLine() != "-i a.fits -o b.fits" {
		t.Errorf("unexpected command line: %q", t1.CommandLine())
	}

	want := []string{
		"input:a.fits",
		"output:b.fits",
		"output:calexp_T1.err",
		"output:calexp_T1.out",
	}
	got := usesOf(t1)
	if len(got) != len(want) {
		t.Fatalf("expected uses %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("use %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if t1.Stderr.Name != "calexp_T1.err" || t1.Stdout.Name != "calexp_T1.out" {
		t.Errorf("unexpected streams: stderr=%s stdout=%s", t1.Stderr.Name, t1.Stdout.Name)
	}
}

func TestBuildJobs_SharesCatalogEntries(t *testing.T) {
	g := pipelineGraph()
	classified(g)
	catalog, _ := BuildCatalog(g, "")
	jobs, err := BuildJobs(g, catalog, JobOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, _ := catalog.Get("b.fits")
	if jobs[0].Outputs()[0] != b || jobs[1].Inputs()[0] != b {
		t.Error("jobs should reference the catalog entry, not a copy")
	}
}

func TestBuildJobs_Streams(t *testing.T) {
	tests := []struct {
		name       string
		streams    any
		wantStdout string
		wantStderr string
	}{
		{"stdout bit", 1, "log.txt", "x_T.err"},
		{"stderr bit", 2, "x_T.out", "log.txt"},
		{"both bits", 3, "log.txt", "log.txt"},
		{"no bits", 0, "x_T.out", "x_T.err"},
		{"float from json", 1.0, "log.txt", "x_T.err"},
		{"string", "2", "x_T.out", "log.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			g.AddNode("in", map[string]any{"lfn": "in.txt"})
			g.AddNode("T", map[string]any{"exec_name": "x"})
			g.AddNode("log", map[string]any{"lfn": "log.txt", "streams": tt.streams})
			g.AddEdge("in", "T")
			g.AddEdge("T", "log")

			job := buildJobs(t, g, JobOptions{})[0]

			if job.Stdout.Name != tt.wantStdout {
				t.Errorf("stdout: expected %s, got %s", tt.wantStdout, job.Stdout.Name)
			}
			if job.Stderr.Name != tt.wantStderr {
				t.Errorf("stderr: expected %s, got %s", tt.wantStderr, job.Stderr.Name)
			}
		})
	}
}

func TestBuildJobs_IgnoredFiles(t *testing.T) {
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in.txt"})
	g.AddNode("T", map[string]any{"exec_name": "x", "exec_args": "in.txt skip.txt"})
	g.AddNode("skip", map[string]any{"lfn": "skip.txt", "ignore": true})
	g.AddNode("tmp", map[string]any{"lfn": "tmp.txt", "ignore": "true"})
	g.AddEdge("in", "T")
	g.AddEdge("skip", "T")
	g.AddEdge("T", "tmp")

	job := buildJobs(t, g, JobOptions{})[0]

	for _, u := range job.Uses {
		if u.File.Name == "skip.txt" || u.File.Name == "tmp.txt" {
			t.Errorf("ignored file %s should not be declared", u.File.Name)
		}
	}

	// Игнорируемый файл остаётся в каталоге и подставляется в аргументы
	if !job.Arguments[1].IsFile() {
		t.Error("skip.txt should still be substituted in arguments")
	}
}

func TestBuildJobs_MissingExecName(t *testing.T) {
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in.txt"})
	g.AddNode("T", map[string]any{"exec_args": "x"})
	g.AddEdge("in", "T")
	classified(g)

	catalog, _ := BuildCatalog(g, "")
	_, err := BuildJobs(g, catalog, JobOptions{})

	var attrErr *MissingAttributeError
	if !errors.As(err, &attrErr) {
		t.Fatalf("expected *MissingAttributeError, got %v", err)
	}
	if attrErr.NodeID != "T" || attrErr.Attribute != domain.AttrExecName {
		t.Errorf("unexpected error details: %+v", attrErr)
	}
}

func TestBuildJobs_Template(t *testing.T) {
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in.txt"})
	g.AddNode("T", map[string]any{"exec_name": "x", "exec_args": "-b {{ .Vars.butler }} in.txt"})
	g.AddEdge("in", "T")

	job := buildJobs(t, g, JobOptions{Args: NewArgContext(map[string]string{"butler": "/repo"})})[0]

	if job.CommandLine() != "-b /repo in.txt" {
		t.Errorf("unexpected command line: %q", job.CommandLine())
	}
	if !job.Arguments[2].IsFile() {
		t.Error("rendered file name should be substituted")
	}
}

func TestBuildJobs_TemplateError(t *testing.T) {
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in.txt"})
	g.AddNode("T", map[string]any{"exec_name": "x", "exec_args": "{{ .Vars.missing }}"})
	g.AddEdge("in", "T")
	classified(g)

	catalog, _ := BuildCatalog(g, "")
	_, err := BuildJobs(g, catalog, JobOptions{Args: NewArgContext(nil)})
	if !errors.Is(err, ErrTemplateRender) {
		t.Errorf("expected ErrTemplateRender, got %v", err)
	}
}

func TestSubstituteArgs(t *testing.T) {
	catalog := domain.NewCatalog()
	catalog.Put(domain.NewFile("a.fits"))
	catalog.Put(domain.NewFile("b.fits"))

	args := SubstituteArgs([]string{"a.fits", "--x", "a.fits", "a.fitsx", "b.fits"}, catalog)

	if len(args) != 5 {
		t.Fatalf("expected 5 arguments, got %d", len(args))
	}
	if !args[0].IsFile() {
		t.Error("first a.fits should be a file reference")
	}
	if args[2].IsFile() {
		t.Error("second a.fits should stay literal")
	}
	if args[3].IsFile() {
		t.Error("partial match should stay literal")
	}
	if !args[4].IsFile() {
		t.Error("b.fits should be a file reference")
	}
}

func TestSubstituteArgs_Empty(t *testing.T) {
	args := SubstituteArgs(nil, domain.NewCatalog())
	if len(args) != 0 {
		t.Errorf("expected no arguments, got %d", len(args))
	}
}
