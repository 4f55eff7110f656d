package service

import (
	"errors"

	"github.com/shaiso/daxgen/internal/dax"
	"github.com/shaiso/daxgen/internal/engine"
	"github.com/shaiso/daxgen/internal/graphio"
	"github.com/shaiso/daxgen/internal/repo"
	"github.com/shaiso/daxgen/internal/storage"
)

// Виды ошибок для метрик и событий workflow.failed.
const (
	KindRequest   = "request"
	KindFormat    = "format"
	KindDecode    = "decode"
	KindShape     = "shape"
	KindAttribute = "attribute"
	KindTemplate  = "template"
	KindCycle     = "cycle"
	KindNotFound  = "not_found"
	KindStorage   = "storage"
	KindIO        = "io"
)

// ErrorKind классифицирует ошибку запуска.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return KindRequest
	case errors.Is(err, graphio.ErrUnsupportedFormat):
		return KindFormat
	case errors.Is(err, graphio.ErrDecode):
		return KindDecode
	case errors.Is(err, engine.ErrNotBipartite):
		return KindShape
	case errors.Is(err, engine.ErrMissingAttribute), errors.Is(err, dax.ErrInvalidReplica):
		return KindAttribute
	case errors.Is(err, engine.ErrTemplateParse), errors.Is(err, engine.ErrTemplateRender):
		return KindTemplate
	case errors.Is(err, engine.ErrCyclicDependency):
		return KindCycle
	case errors.Is(err, repo.ErrNotFound):
		return KindNotFound
	case errors.Is(err, storage.ErrUnsupportedScheme),
		errors.Is(err, storage.ErrBackendNotConfigured),
		errors.Is(err, storage.ErrInvalidLocation),
		errors.Is(err, graphio.ErrNoGraphStore):
		return KindStorage
	default:
		return KindIO
	}
}
