package graphio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/shaiso/daxgen/internal/graph"
	"github.com/shaiso/daxgen/internal/telemetry"
)

// StorePrefix — префикс источников из хранилища графов (pg:<name>).
const StorePrefix = "pg:"

// Opener открывает артефакт по URI (storage.Router).
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// GraphStore — хранилище именованных графов (repo.GraphRepo).
type GraphStore interface {
	LoadGraph(ctx context.Context, name string) (*graph.Graph, error)
}

// Loader загружает граф по URI.
type Loader struct {
	registry *Registry
	opener   Opener
	store    GraphStore
}

// NewLoader создаёт загрузчик. store может быть nil: тогда источники
// pg: дают ErrNoGraphStore.
func NewLoader(registry *Registry, opener Opener, store GraphStore) *Loader {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Loader{registry: registry, opener: opener, store: store}
}

// Registry возвращает реестр форматов загрузчика.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load загружает граф.
//
// Формат определяется по расширению до любого ввода-вывода: файл с
// неизвестным расширением не открывается.
func (l *Loader) Load(ctx context.Context, uri string) (*graph.Graph, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "daxgen.load")
	defer span.End()
	span.SetAttributes(attribute.String("source", uri))

	g, err := l.load(ctx, uri)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("graph.nodes", g.Len()),
		attribute.Int("graph.edges", g.EdgeCount()),
	)
	return g, nil
}

func (l *Loader) load(ctx context.Context, uri string) (*graph.Graph, error) {
	if name, ok := strings.CutPrefix(uri, StorePrefix); ok {
		if l.store == nil {
			return nil, ErrNoGraphStore
		}
		return l.store.LoadGraph(ctx, name)
	}

	codec, err := l.registry.ForPath(uri)
	if err != nil {
		return nil, err
	}

	rc, err := l.opener.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	defer rc.Close()

	return codec.Decode(rc)
}
