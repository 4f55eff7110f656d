package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want Location
	}{
		{"relative path", "graphs/g.json", Location{Scheme: SchemeFile, Key: "graphs/g.json"}},
		{"absolute path", "/tmp/g.json", Location{Scheme: SchemeFile, Key: "/tmp/g.json"}},
		{"file uri", "file:///tmp/g.json", Location{Scheme: SchemeFile, Key: "/tmp/g.json"}},
		{"s3 uri", "s3://bucket/dir/g.json", Location{Scheme: SchemeS3, Bucket: "bucket", Key: "dir/g.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocation_Errors(t *testing.T) {
	_, err := ParseLocation("")
	assert.ErrorIs(t, err, ErrInvalidLocation)

	_, err = ParseLocation("s3://bucket")
	assert.ErrorIs(t, err, ErrInvalidLocation)

	_, err = ParseLocation("ftp://host/file")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestLocation_Ext(t *testing.T) {
	loc, err := ParseLocation("s3://b/graph.GraphML")
	require.NoError(t, err)
	assert.Equal(t, "graphml", loc.Ext())
	assert.Equal(t, "s3://b/graph.GraphML", loc.String())
}

func TestLocal_PutOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "wf.dax")
	r := NewRouter(nil, nil)

	ref, err := r.Put(context.Background(), path, []byte("<adag/>"), "application/xml")
	require.NoError(t, err)
	assert.Equal(t, path, ref.URI)
	assert.EqualValues(t, 7, ref.Size)
	assert.Len(t, ref.Checksum, 64)

	rc, err := r.Open(context.Background(), "file://"+path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<adag/>", string(data))

	// Временных файлов не осталось
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocal_OpenMissing(t *testing.T) {
	_, err := NewLocal().Open(context.Background(), Location{Scheme: SchemeFile, Key: filepath.Join(t.TempDir(), "none")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRouter_S3NotConfigured(t *testing.T) {
	r := NewRouter(nil, nil)

	_, err := r.Open(context.Background(), "s3://bucket/key.json")
	assert.ErrorIs(t, err, ErrBackendNotConfigured)
}

// fakeS3 — минимальный S3 с path-style адресацией.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[key] = data
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>not found</Message></Error>`)
			return
		}
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Backend_PutOpen(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	backend, err := NewS3Backend(context.Background(), S3Config{
		Endpoint:        strings.TrimPrefix(srv.URL, "http://"),
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)

	r := NewRouter(nil, backend)
	ctx := context.Background()

	ref, err := r.Put(ctx, "s3://workflows/run/rc.txt", []byte("a.fits file:///a condorpool\n"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "s3://workflows/run/rc.txt", ref.URI)
	assert.Contains(t, fake.objects, "workflows/run/rc.txt")

	rc, err := r.Open(ctx, "s3://workflows/run/rc.txt")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a.fits file:///a condorpool\n", string(data))

	_, err = r.Open(ctx, "s3://workflows/missing")
	assert.Error(t, err)
}
