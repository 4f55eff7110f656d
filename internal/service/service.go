package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/shaiso/daxgen/internal/dax"
	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/engine"
	"github.com/shaiso/daxgen/internal/graph"
	"github.com/shaiso/daxgen/internal/graphio"
	"github.com/shaiso/daxgen/internal/mq"
	"github.com/shaiso/daxgen/internal/storage"
	"github.com/shaiso/daxgen/internal/telemetry"
)

// Content types артефактов.
const (
	ContentTypeDAX     = "application/xml"
	ContentTypeCatalog = "text/plain; charset=utf-8"
)

// ErrInvalidRequest — в запросе не хватает путей.
var ErrInvalidRequest = errors.New("invalid request")

// Notifier публикует события о результате запуска (mq.Publisher).
type Notifier interface {
	PublishGenerated(ctx context.Context, payload mq.GeneratedPayload) error
	PublishFailed(ctx context.Context, payload mq.FailedPayload) error
}

// Config — зависимости сервиса.
type Config struct {
	// Generator — базовые параметры генератора. Logger и Metrics
	// берутся из полей сервиса.
	Generator engine.Config

	Loader   *graphio.Loader
	Storage  *storage.Router
	Notifier Notifier // может быть nil
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger
}

// Service — генератор workflow с вводом-выводом.
type Service struct {
	generator engine.Config
	loader    *graphio.Loader
	storage   *storage.Router
	notifier  Notifier
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// New создаёт сервис.
func New(cfg Config) *Service {
	if cfg.Storage == nil {
		cfg.Storage = storage.NewRouter(nil, nil)
	}
	if cfg.Loader == nil {
		cfg.Loader = graphio.NewLoader(nil, cfg.Storage, nil)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NewMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		generator: cfg.Generator,
		loader:    cfg.Loader,
		storage:   cfg.Storage,
		notifier:  cfg.Notifier,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// Options — параметры одного запуска поверх конфигурации сервиса.
type Options struct {
	// Name — имя workflow. Пустое — из конфигурации.
	Name string

	// Vars — переменные шаблонов, дополняют и перекрывают общие.
	Vars map[string]string
}

// Artifacts — результат компиляции в памяти.
type Artifacts struct {
	Workflow *domain.Workflow
	DAX      []byte
	Catalog  []byte
}

// Request — запуск с загрузкой графа и записью артефактов.
type Request struct {
	Source       string
	WorkflowPath string
	CatalogPath  string
	Options
}

// Result — итог запуска.
type Result struct {
	Workflow    *domain.Workflow
	WorkflowRef *storage.ObjectRef
	CatalogRef  *storage.ObjectRef
}

// Compile генерирует workflow по графу в памяти и сериализует оба
// артефакта.
func (s *Service) Compile(ctx context.Context, g *graph.Graph, opts Options) (*Artifacts, error) {
	start := time.Now()
	art, err := s.compile(ctx, g, opts)
	s.observe(start, art, err)
	return art, err
}

// Run загружает граф, генерирует workflow и записывает оба артефакта.
//
// Артефакты пишутся только после успешной генерации обоих. Ошибка
// уведомления не делает запуск неуспешным.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	res, err := s.run(ctx, req)
	if err != nil {
		s.observe(start, nil, err)
		s.notifyFailed(ctx, req.Source, err)
		return nil, err
	}
	s.observe(start, &Artifacts{Workflow: res.Workflow}, nil)

	if s.notifier != nil {
		payload := mq.GeneratedPayload{
			RunID:       res.Workflow.RunID,
			Name:        res.Workflow.Name,
			Source:      req.Source,
			WorkflowURI: res.WorkflowRef.URI,
			CatalogURI:  res.CatalogRef.URI,
			Stats:       res.Workflow.Stats(),
		}
		if err := s.notifier.PublishGenerated(ctx, payload); err != nil {
			s.logger.Warn("failed to publish workflow.generated", "run_id", res.Workflow.RunID, "error", err)
		}
	}

	return res, nil
}

func (s *Service) run(ctx context.Context, req Request) (*Result, error) {
	if req.Source == "" || req.WorkflowPath == "" || req.CatalogPath == "" {
		return nil, fmt.Errorf("%w: source, workflow and catalog paths are required", ErrInvalidRequest)
	}

	g, err := s.loader.Load(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", req.Source, err)
	}

	art, err := s.compile(ctx, g, req.Options)
	if err != nil {
		return nil, err
	}

	wfRef, err := s.storage.Put(ctx, req.WorkflowPath, art.DAX, ContentTypeDAX)
	if err != nil {
		return nil, fmt.Errorf("write workflow: %w", err)
	}
	rcRef, err := s.storage.Put(ctx, req.CatalogPath, art.Catalog, ContentTypeCatalog)
	if err != nil {
		return nil, fmt.Errorf("write replica catalog: %w", err)
	}

	s.logger.Info("artifacts written",
		"run_id", art.Workflow.RunID,
		"workflow", wfRef.URI,
		"workflow_sha256", wfRef.Checksum,
		"catalog", rcRef.URI,
	)

	return &Result{
		Workflow:    art.Workflow,
		WorkflowRef: wfRef,
		CatalogRef:  rcRef,
	}, nil
}

func (s *Service) compile(ctx context.Context, g *graph.Graph, opts Options) (*Artifacts, error) {
	wf, err := s.newGenerator(opts).Generate(ctx, g)
	if err != nil {
		return nil, err
	}

	var wfBuf, rcBuf bytes.Buffer
	if err := dax.WriteWorkflow(&wfBuf, wf); err != nil {
		return nil, fmt.Errorf("write workflow: %w", err)
	}
	if err := dax.WriteReplicaCatalog(&rcBuf, wf.Catalog); err != nil {
		return nil, fmt.Errorf("write replica catalog: %w", err)
	}

	return &Artifacts{
		Workflow: wf,
		DAX:      wfBuf.Bytes(),
		Catalog:  rcBuf.Bytes(),
	}, nil
}

// newGenerator создаёт генератор для одного запуска.
func (s *Service) newGenerator(opts Options) *engine.Generator {
	cfg := s.generator
	cfg.Logger = s.logger
	cfg.Metrics = s.metrics

	if opts.Name != "" {
		cfg.Name = opts.Name
	}
	if opts.Vars != nil {
		vars := make(map[string]string, len(cfg.Vars)+len(opts.Vars))
		maps.Copy(vars, cfg.Vars)
		maps.Copy(vars, opts.Vars)
		cfg.Vars = vars
	}

	return engine.NewGenerator(cfg)
}

// observe записывает метрики запуска.
func (s *Service) observe(start time.Time, art *Artifacts, err error) {
	d := time.Since(start)
	if err != nil {
		s.metrics.RunFailed(d, ErrorKind(err))
		return
	}
	stats := art.Workflow.Stats()
	s.metrics.RunSucceeded(d, stats.Jobs, stats.Dependencies, stats.Replicas)
}

func (s *Service) notifyFailed(ctx context.Context, source string, runErr error) {
	if s.notifier == nil {
		return
	}
	payload := mq.FailedPayload{
		Source: source,
		Kind:   ErrorKind(runErr),
		Error:  runErr.Error(),
	}
	if err := s.notifier.PublishFailed(ctx, payload); err != nil {
		s.logger.Warn("failed to publish workflow.failed", "source", source, "error", err)
	}
}

// Metrics возвращает метрики сервиса.
func (s *Service) Metrics() *telemetry.Metrics {
	return s.metrics
}

// Loader возвращает загрузчик графов сервиса.
func (s *Service) Loader() *graphio.Loader {
	return s.loader
}
