package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local — бэкенд локальной файловой системы.
type Local struct{}

// NewLocal создаёт локальный бэкенд.
func NewLocal() *Local {
	return &Local{}
}

// Open открывает файл.
func (l *Local) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	f, err := os.Open(loc.Key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", loc.Key, err)
	}
	return f, nil
}

// Put записывает файл через временный файл и переименование, чтобы
// читатель не увидел частично записанный артефакт.
func (l *Local) Put(ctx context.Context, loc Location, content []byte, contentType string) (*ObjectRef, error) {
	dir := filepath.Dir(loc.Key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(loc.Key)+".*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write %s: %w", loc.Key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", loc.Key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, fmt.Errorf("chmod %s: %w", loc.Key, err)
	}
	if err := os.Rename(tmp.Name(), loc.Key); err != nil {
		return nil, fmt.Errorf("rename to %s: %w", loc.Key, err)
	}

	return newObjectRef(loc.Key, contentType, content), nil
}
