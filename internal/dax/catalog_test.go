package dax

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

func TestWriteReplicaCatalog(t *testing.T) {
	wf := generate(t, pipeline())

	var buf bytes.Buffer
	if err := WriteReplicaCatalog(&buf, wf.Catalog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Только a.fits имеет реплики
	want := "a.fits file:///data/a.fits condorpool\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestReplicaCatalog_RoundTrip(t *testing.T) {
	g := graph.New()
	g.AddNode("a", map[string]any{"lfn": "a.fits", "pfn": "file:///a.fits,gsiftp://host/a.fits", "sites": "local,remote"})
	g.AddNode("T", map[string]any{"exec_name": "x"})
	g.AddNode("b", map[string]any{"lfn": "b.fits"})
	g.AddNode("c", map[string]any{"lfn": "c.fits", "pfn": "s3://bucket/c.fits"})
	g.AddEdge("a", "T")
	g.AddEdge("T", "b")
	g.AddEdge("T", "c")

	wf := generate(t, g)

	var buf bytes.Buffer
	if err := WriteReplicaCatalog(&buf, wf.Catalog); err != nil {
		t.Fatalf("write: %v", err)
	}

	parsed, err := ReadReplicaCatalog(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	// Каждое lfn с репликами восстанавливается, файлы без реплик отсутствуют
	expected := wf.Catalog.WithReplicas()
	if parsed.Len() != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), parsed.Len())
	}
	for _, f := range expected {
		got, ok := parsed.Get(f.Name)
		if !ok {
			t.Fatalf("%s is missing", f.Name)
		}
		if len(got.Replicas) != len(f.Replicas) {
			t.Fatalf("%s: expected %d replicas, got %d", f.Name, len(f.Replicas), len(got.Replicas))
		}
		for i := range f.Replicas {
			if got.Replicas[i] != f.Replicas[i] {
				t.Errorf("%s replica %d: expected %+v, got %+v", f.Name, i, f.Replicas[i], got.Replicas[i])
			}
		}
	}
	if parsed.Has("b.fits") {
		t.Error("b.fits has no replicas and should be omitted")
	}
}

func TestWriteReplicaCatalog_InvalidFields(t *testing.T) {
	tests := []struct {
		name string
		lfn  string
		url  string
		site string
	}{
		{"space in lfn", "my file.fits", "file:///data/a.fits", "local"},
		{"tab in url", "a.fits", "file:///data/a\t.fits", "local"},
		{"space in site", "a.fits", "file:///data/a.fits", "my site"},
		{"empty url", "a.fits", "", "local"},
		{"empty site", "a.fits", "file:///data/a.fits", ""},
		{"newline in lfn", "a\nb.fits", "file:///data/a.fits", "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.NewCatalog()
			f := domain.NewFile(tt.lfn)
			f.AddReplica(tt.url, tt.site)
			c.Put(f)

			var buf bytes.Buffer
			err := WriteReplicaCatalog(&buf, c)
			if !errors.Is(err, ErrInvalidReplica) {
				t.Fatalf("expected ErrInvalidReplica, got %v", err)
			}
			if buf.Len() != 0 {
				t.Errorf("nothing should be written, got %q", buf.String())
			}
		})
	}
}

func TestReadReplicaCatalog_CommentsAndErrors(t *testing.T) {
	input := "# replicas\n\na.fits file:///a local\n  \na.fits file:///b remote\n"

	c, err := ReadReplicaCatalog(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, _ := c.Get("a.fits")
	if len(f.Replicas) != 2 {
		t.Errorf("expected 2 replicas, got %d", len(f.Replicas))
	}

	_, err = ReadReplicaCatalog(strings.NewReader("a.fits file:///a\n"))
	if err == nil {
		t.Error("line with two fields should be rejected")
	}
}

func TestWriteReplicaCatalog_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReplicaCatalog(&buf, domain.NewCatalog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty catalog should produce no output, got %q", buf.String())
	}
}
