package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/daxgen/internal/dax"
	"github.com/shaiso/daxgen/internal/engine"
	"github.com/shaiso/daxgen/internal/graph"
	"github.com/shaiso/daxgen/internal/graphio"
	"github.com/shaiso/daxgen/internal/mq"
	"github.com/shaiso/daxgen/internal/telemetry"
)

const pipelineDoc = `{
  "directed": true,
  "nodes": [
    {"id": "a", "lfn": "a.fits", "pfn": "file:///data/a.fits"},
    {"id": "T1", "exec_name": "calibrate", "exec_args": "-i a.fits -o b.fits"},
    {"id": "b", "lfn": "b.fits"},
    {"id": "T2", "exec_name": "coadd", "exec_args": "-i b.fits --stage {{ .Vars.stage }} --level {{ .Vars.level }}"},
    {"id": "c", "lfn": "c.fits"}
  ],
  "links": [
    {"source": "a", "target": "T1"},
    {"source": "T1", "target": "b"},
    {"source": "b", "target": "T2"},
    {"source": "T2", "target": "c"}
  ]
}`

type recordingNotifier struct {
	generated []mq.GeneratedPayload
	failed    []mq.FailedPayload
	err       error
}

func (n *recordingNotifier) PublishGenerated(ctx context.Context, p mq.GeneratedPayload) error {
	n.generated = append(n.generated, p)
	return n.err
}

func (n *recordingNotifier) PublishFailed(ctx context.Context, p mq.FailedPayload) error {
	n.failed = append(n.failed, p)
	return n.err
}

func newTestService(t *testing.T, notifier Notifier) *Service {
	t.Helper()
	return New(Config{
		Generator: engine.Config{Name: "lsst", Vars: map[string]string{"level": "2"}},
		Notifier:  notifier,
		Metrics:   telemetry.NewMetrics(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func writeGraph(t *testing.T, name, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestService_Run(t *testing.T) {
	src := writeGraph(t, "graph.json", pipelineDoc)
	out := t.TempDir()
	notifier := &recordingNotifier{}
	s := newTestService(t, notifier)

	res, err := s.Run(context.Background(), Request{
		Source:       src,
		WorkflowPath: filepath.Join(out, "wf.dax"),
		CatalogPath:  filepath.Join(out, "rc.txt"),
		Options:      Options{Vars: map[string]string{"stage": "deep"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "lsst", res.Workflow.Name)
	assert.Len(t, res.Workflow.Jobs, 2)
	assert.Equal(t, "application/xml", res.WorkflowRef.ContentType)
	assert.NotEmpty(t, res.CatalogRef.Checksum)

	// DAX читается обратно и ссылочно целостен
	f, err := os.Open(filepath.Join(out, "wf.dax"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := dax.ReadWorkflow(f)
	require.NoError(t, err)
	require.NoError(t, doc.Check())
	assert.Equal(t, 1, doc.DependencyCount())

	job, ok := doc.Job("T2")
	require.True(t, ok)
	assert.Equal(t, "coadd", job.Name)
	assert.Equal(t, "-i b.fits --stage deep --level 2", job.Argument.String())

	rc, err := os.ReadFile(filepath.Join(out, "rc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a.fits file:///data/a.fits condorpool\n", string(rc))

	require.Len(t, notifier.generated, 1)
	assert.Equal(t, res.Workflow.RunID, notifier.generated[0].RunID)
	assert.Equal(t, 1, notifier.generated[0].Stats.Dependencies)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics().RunsTotal.WithLabelValues(telemetry.StatusSucceeded)))
}

func TestService_RunNotifyFailureIsWarning(t *testing.T) {
	src := writeGraph(t, "graph.json", pipelineDoc)
	out := t.TempDir()
	s := newTestService(t, &recordingNotifier{err: errors.New("broker down")})

	_, err := s.Run(context.Background(), Request{
		Source:       src,
		WorkflowPath: filepath.Join(out, "wf.dax"),
		CatalogPath:  filepath.Join(out, "rc.txt"),
		Options:      Options{Vars: map[string]string{"stage": "deep"}},
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "wf.dax"))
}

func TestService_RunErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		doc      string
		wantErr  error
		wantKind string
	}{
		{
			name:     "unsupported format",
			file:     "graph.dot",
			doc:      "digraph {}",
			wantErr:  graphio.ErrUnsupportedFormat,
			wantKind: KindFormat,
		},
		{
			name:     "not bipartite",
			file:     "graph.json",
			doc:      `{"nodes": [{"id": "a", "lfn": "a"}, {"id": "b", "lfn": "b"}, {"id": "c", "lfn": "c"}], "links": [{"source": "a", "target": "b"}, {"source": "b", "target": "c"}, {"source": "c", "target": "a"}]}`,
			wantErr:  engine.ErrNotBipartite,
			wantKind: KindShape,
		},
		{
			name:     "missing exec_name",
			file:     "graph.json",
			doc:      `{"nodes": [{"id": "a", "lfn": "a"}, {"id": "T"}], "links": [{"source": "a", "target": "T"}]}`,
			wantErr:  engine.ErrMissingAttribute,
			wantKind: KindAttribute,
		},
		{
			name:     "lfn with space",
			file:     "graph.json",
			doc:      `{"nodes": [{"id": "a", "lfn": "my file.fits", "pfn": "file:///data/a.fits"}, {"id": "T", "exec_name": "x"}], "links": [{"source": "a", "target": "T"}]}`,
			wantErr:  dax.ErrInvalidReplica,
			wantKind: KindAttribute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := writeGraph(t, tt.file, tt.doc)
			out := t.TempDir()
			notifier := &recordingNotifier{}
			s := newTestService(t, notifier)

			_, err := s.Run(context.Background(), Request{
				Source:       src,
				WorkflowPath: filepath.Join(out, "wf.dax"),
				CatalogPath:  filepath.Join(out, "rc.txt"),
			})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, ErrorKind(err))

			// Ни один артефакт не записан
			assert.NoFileExists(t, filepath.Join(out, "wf.dax"))
			assert.NoFileExists(t, filepath.Join(out, "rc.txt"))

			require.Len(t, notifier.failed, 1)
			assert.Equal(t, tt.wantKind, notifier.failed[0].Kind)
			assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics().ErrorsTotal.WithLabelValues(tt.wantKind)))
		})
	}
}

func TestService_RunInvalidRequest(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.Run(context.Background(), Request{Source: "graph.json"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, KindRequest, ErrorKind(err))
}

func TestService_Compile(t *testing.T) {
	g := graph.New()
	g.AddNode("in", map[string]any{"lfn": "in.txt", "pfn": "gsiftp://host/in.txt", "sites": "remote"})
	g.AddNode("T", map[string]any{"exec_name": "cat", "exec_args": "in.txt"})
	g.AddEdge("in", "T")

	s := newTestService(t, nil)
	art, err := s.Compile(context.Background(), g, Options{Name: "inline"})
	require.NoError(t, err)

	assert.Equal(t, "inline", art.Workflow.Name)
	assert.Contains(t, string(art.DAX), `name="inline"`)
	assert.Contains(t, string(art.DAX), `<file name="in.txt"/>`)
	assert.Equal(t, "in.txt gsiftp://host/in.txt remote\n", string(art.Catalog))

	// Исходный граф не изменён
	n, _ := g.Node("in")
	assert.False(t, n.IsFile())
}

func TestService_CompileVarsOverride(t *testing.T) {
	g := graph.New()
	g.AddNode("T", map[string]any{"exec_name": "echo", "exec_args": "{{ .Vars.level }}"})

	s := newTestService(t, nil)

	art, err := s.Compile(context.Background(), g, Options{})
	require.NoError(t, err)
	assert.Equal(t, "2", art.Workflow.Jobs[0].Arguments[0].Literal)

	art, err = s.Compile(context.Background(), g, Options{Vars: map[string]string{"level": "7"}})
	require.NoError(t, err)
	assert.Equal(t, "7", art.Workflow.Jobs[0].Arguments[0].Literal)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("load: %w", &graphio.FormatError{Path: "g.dot", Ext: ".dot"}), KindFormat},
		{engine.ErrCyclicDependency, KindCycle},
		{fmt.Errorf("node T: %w", engine.ErrTemplateRender), KindTemplate},
		{graphio.ErrNoGraphStore, KindStorage},
		{errors.New("connection reset"), KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestHandleGenerate(t *testing.T) {
	src := writeGraph(t, "graph.json", pipelineDoc)
	out := t.TempDir()
	s := newTestService(t, nil)

	newDelivery := func(t *testing.T, req mq.GenerateRequest) *mq.Delivery {
		msg, err := mq.NewMessage(mq.MessageTypeGenerate, req)
		require.NoError(t, err)
		return &mq.Delivery{Message: *msg}
	}

	t.Run("success", func(t *testing.T) {
		err := s.HandleGenerate(context.Background(), newDelivery(t, mq.GenerateRequest{
			Source:       src,
			WorkflowPath: filepath.Join(out, "wf.dax"),
			CatalogPath:  filepath.Join(out, "rc.txt"),
			Vars:         map[string]string{"stage": "deep"},
		}))
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(out, "wf.dax"))
	})

	t.Run("bad graph is permanent", func(t *testing.T) {
		err := s.HandleGenerate(context.Background(), newDelivery(t, mq.GenerateRequest{
			Source:       strings.TrimSuffix(src, ".json") + ".dot",
			WorkflowPath: filepath.Join(out, "x.dax"),
			CatalogPath:  filepath.Join(out, "x.txt"),
		}))
		assert.ErrorIs(t, err, mq.ErrPermanent)
	})

	t.Run("missing file is retried", func(t *testing.T) {
		err := s.HandleGenerate(context.Background(), newDelivery(t, mq.GenerateRequest{
			Source:       filepath.Join(out, "missing.json"),
			WorkflowPath: filepath.Join(out, "y.dax"),
			CatalogPath:  filepath.Join(out, "y.txt"),
		}))
		require.Error(t, err)
		assert.NotErrorIs(t, err, mq.ErrPermanent)
	})

	t.Run("wrong type", func(t *testing.T) {
		msg, err := mq.NewMessage(mq.MessageTypeGenerated, mq.GeneratedPayload{})
		require.NoError(t, err)
		err = s.HandleGenerate(context.Background(), &mq.Delivery{Message: *msg})
		assert.ErrorIs(t, err, mq.ErrPermanent)
	})
}
