package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

func TestBuildCatalog(t *testing.T) {
	g := classified(pipelineGraph())

	catalog, err := BuildCatalog(g, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if catalog.Len() != 3 {
		t.Fatalf("expected 3 files, got %d", catalog.Len())
	}

	a, ok := catalog.Get("a.fits")
	if !ok {
		t.Fatal("a.fits should be in the catalog")
	}
	if len(a.Replicas) != 1 {
		t.Fatalf("expected 1 replica, got %d", len(a.Replicas))
	}
	if a.Replicas[0].URL != "file:///data/a.fits" || a.Replicas[0].Site != domain.DefaultSite {
		t.Errorf("unexpected replica: %+v", a.Replicas[0])
	}

	b, _ := catalog.Get("b.fits")
	if b.HasReplicas() {
		t.Error("b.fits should have no replicas")
	}
}

func TestBuildCatalog_Replicas(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]any
		want  []domain.Replica
	}{
		{
			name:  "default site for each url",
			attrs: map[string]any{"pfn": "file:///a, gsiftp://h/a"},
			want: []domain.Replica{
				{URL: "file:///a", Site: "local"},
				{URL: "gsiftp://h/a", Site: "local"},
			},
		},
		{
			name:  "explicit sites",
			attrs: map[string]any{"pfn": "file:///a,gsiftp://h/a", "sites": "local,remote"},
			want: []domain.Replica{
				{URL: "file:///a", Site: "local"},
				{URL: "gsiftp://h/a", Site: "remote"},
			},
		},
		{
			name:  "fewer sites than urls",
			attrs: map[string]any{"pfn": "u1,u2,u3", "sites": "s1"},
			want:  []domain.Replica{{URL: "u1", Site: "s1"}},
		},
		{
			name:  "blank site keeps positions",
			attrs: map[string]any{"pfn": "u1,u2,u3", "sites": "s1,,s3"},
			want: []domain.Replica{
				{URL: "u1", Site: "s1"},
				{URL: "u2", Site: "local"},
				{URL: "u3", Site: "s3"},
			},
		},
		{
			name:  "blank url keeps positions",
			attrs: map[string]any{"pfn": "u1,,u3", "sites": "s1,s2,s3"},
			want: []domain.Replica{
				{URL: "u1", Site: "s1"},
				{URL: "u3", Site: "s3"},
			},
		},
		{
			name:  "empty pfn",
			attrs: map[string]any{"pfn": ""},
			want:  []domain.Replica{},
		},
		{
			name:  "list valued pfn",
			attrs: map[string]any{"pfn": []any{"u1", "u2"}, "sites": []any{"s1", "s2"}},
			want: []domain.Replica{
				{URL: "u1", Site: "s1"},
				{URL: "u2", Site: "s2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := map[string]any{"lfn": "f"}
			for k, v := range tt.attrs {
				attrs[k] = v
			}

			g := graph.New()
			g.AddNode("f", attrs)
			g.AddNode("T", map[string]any{"exec_name": "x"})
			g.AddEdge("f", "T")
			classified(g)

			catalog, err := BuildCatalog(g, "local")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			f, _ := catalog.Get("f")
			if len(f.Replicas) != len(tt.want) {
				t.Fatalf("expected %d replicas, got %d", len(tt.want), len(f.Replicas))
			}
			for i, r := range tt.want {
				if f.Replicas[i] != r {
					t.Errorf("replica %d: expected %+v, got %+v", i, r, f.Replicas[i])
				}
			}
		})
	}
}

func TestBuildCatalog_DuplicateLFN(t *testing.T) {
	g := graph.New()
	g.AddNode("f1", map[string]any{"lfn": "same", "pfn": "first"})
	g.AddNode("T", map[string]any{"exec_name": "x"})
	g.AddNode("f2", map[string]any{"lfn": "same", "pfn": "second"})
	g.AddEdge("f1", "T")
	g.AddEdge("T", "f2")
	classified(g)

	catalog, err := BuildCatalog(g, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if catalog.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", catalog.Len())
	}
	f, _ := catalog.Get("same")
	if f.Replicas[0].URL != "second" {
		t.Errorf("last node should win, got %s", f.Replicas[0].URL)
	}
}

func TestBuildCatalog_MissingLFN(t *testing.T) {
	// Первый узел без lfn: его класс становится задачами, а настоящие
	// задачи — файлами без lfn
	g := graph.New()
	g.AddNode("f", map[string]any{"pfn": "file:///f"})
	g.AddNode("T", map[string]any{"exec_name": "x"})
	g.AddEdge("f", "T")
	classified(g)

	_, err := BuildCatalog(g, "")
	if !errors.Is(err, ErrMissingAttribute) {
		t.Fatalf("expected ErrMissingAttribute, got %v", err)
	}

	var attrErr *MissingAttributeError
	if !errors.As(err, &attrErr) {
		t.Fatalf("expected *MissingAttributeError, got %T", err)
	}
	if attrErr.NodeID != "T" || attrErr.Attribute != domain.AttrLFN {
		t.Errorf("unexpected error details: %+v", attrErr)
	}
}
