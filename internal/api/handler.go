package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
	"github.com/shaiso/daxgen/internal/graphio"
	"github.com/shaiso/daxgen/internal/mq"
	"github.com/shaiso/daxgen/internal/service"
)

// GraphStore — хранилище именованных графов (repo.GraphRepo).
type GraphStore interface {
	graphio.GraphStore
	Save(ctx context.Context, name string, g *graph.Graph) (*domain.StoredGraph, error)
	Get(ctx context.Context, name string) (*domain.StoredGraph, error)
	List(ctx context.Context) ([]domain.StoredGraph, error)
	Delete(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

// Enqueuer ставит запросы на генерацию в очередь (mq.Publisher).
type Enqueuer interface {
	PublishGenerate(ctx context.Context, req mq.GenerateRequest) (string, error)
	Ready() bool
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	service  *service.Service
	registry *graphio.Registry
	graphs   GraphStore
	enqueuer Enqueuer
	logger   *slog.Logger

	startTime time.Time
	maxBody   int64
}

// DefaultMaxBody — ограничение размера тела запроса с графом.
const DefaultMaxBody = 32 << 20

// Config — конфигурация для создания Handler.
type Config struct {
	Service  *service.Service
	Graphs   GraphStore // может быть nil
	Enqueuer Enqueuer   // может быть nil
	Logger   *slog.Logger
	MaxBody  int64
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Service == nil {
		cfg.Service = service.New(service.Config{Logger: cfg.Logger})
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}

	return &Handler{
		service:   cfg.Service,
		registry:  cfg.Service.Loader().Registry(),
		graphs:    cfg.Graphs,
		enqueuer:  cfg.Enqueuer,
		logger:    cfg.Logger,
		startTime: time.Now(),
		maxBody:   cfg.MaxBody,
	}
}

// decodeJSON читает JSON тело с ограничением размера.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *Handler) uptime() time.Duration {
	return time.Since(h.startTime).Round(time.Second)
}
