package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
	"github.com/shaiso/daxgen/internal/telemetry"
)

// DefaultWorkflowName — имя workflow по умолчанию.
const DefaultWorkflowName = "workflow"

// Config — конфигурация генератора.
type Config struct {
	// Name — имя workflow в документе.
	Name string

	// DefaultSite — сайт для реплик без явного сайта.
	DefaultSite string

	// Vars — переменные для шаблонов exec_args. nil отключает шаблоны.
	Vars map[string]string

	// Env — переменные окружения, доступные шаблонам как .Env.
	Env map[string]string

	// StrictAcyclic — проверять отсутствие циклов между задачами.
	StrictAcyclic bool

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Generator превращает двудольный граф в абстрактный workflow.
//
// Generator не хранит состояния между запусками: каждый вызов Generate
// работает с собственной копией графа и собственным каталогом.
type Generator struct {
	name          string
	defaultSite   string
	vars          map[string]string
	env           map[string]string
	strictAcyclic bool

	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer

	now   func() time.Time
	newID func() uuid.UUID
}

// NewGenerator создаёт генератор.
func NewGenerator(cfg Config) *Generator {
	if cfg.Name == "" {
		cfg.Name = DefaultWorkflowName
	}
	if cfg.DefaultSite == "" {
		cfg.DefaultSite = domain.DefaultSite
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NewMetrics()
	}

	return &Generator{
		name:          cfg.Name,
		defaultSite:   cfg.DefaultSite,
		vars:          cfg.Vars,
		env:           cfg.Env,
		strictAcyclic: cfg.StrictAcyclic,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		tracer:        telemetry.Tracer(),
		now:           time.Now,
		newID:         uuid.New,
	}
}

// Generate строит workflow по графу.
//
// Исходный граф не изменяется: классификация выполняется на копии.
// Любая ошибка прерывает генерацию целиком, частичный результат не
// возвращается.
func (g *Generator) Generate(ctx context.Context, src *graph.Graph) (*domain.Workflow, error) {
	runID := g.newID()
	logger := telemetry.WithRunID(g.logger, runID.String())

	ctx, span := g.tracer.Start(ctx, "daxgen.generate",
		trace.WithAttributes(
			attribute.String("run_id", runID.String()),
			attribute.Int("graph.nodes", src.Len()),
			attribute.Int("graph.edges", src.EdgeCount()),
		),
	)
	defer span.End()

	wf, err := g.generate(ctx, logger, src.Copy())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	wf.RunID = runID
	wf.CreatedAt = g.now().UTC()

	stats := wf.Stats()
	span.SetAttributes(
		attribute.Int("workflow.jobs", stats.Jobs),
		attribute.Int("workflow.dependencies", stats.Dependencies),
	)
	logger.Info("workflow generated",
		"name", wf.Name,
		"jobs", stats.Jobs,
		"dependencies", stats.Dependencies,
		"files", stats.Files,
		"replicas", stats.Replicas,
	)

	return wf, nil
}

func (g *Generator) generate(ctx context.Context, logger *slog.Logger, gr *graph.Graph) (*domain.Workflow, error) {
	// 1. Файлы и задачи
	var classification *Classification
	err := g.stage(ctx, "classify", func() error {
		var err error
		classification, err = Classify(gr)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, p := range classification.Partitions {
		if !p.SampleIsFile {
			telemetry.WithNodeID(logger, p.Sample).Debug("sample node has no lfn, its color class is treated as tasks",
				"files", len(p.Files), "tasks", len(p.Tasks))
		}
	}
	logger.Debug("graph classified",
		"components", len(classification.Partitions),
		"files", classification.FileCount(),
		"tasks", classification.TaskCount(),
	)

	// 2. Каталог файлов
	var catalog *domain.Catalog
	err = g.stage(ctx, "catalog", func() error {
		var err error
		catalog, err = BuildCatalog(gr, g.defaultSite)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Задачи
	opts := JobOptions{}
	if g.vars != nil {
		opts.Args = NewArgContext(g.vars)
		for k, v := range g.env {
			opts.Args.SetEnv(k, v)
		}
	}
	var jobs []*domain.Job
	err = g.stage(ctx, "jobs", func() error {
		var err error
		jobs, err = BuildJobs(gr, catalog, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		telemetry.WithJobID(logger, job.ID).Debug("job built",
			"name", job.Name, "arguments", len(job.Arguments), "uses", len(job.Uses))
	}

	// 4. Зависимости
	var deps []domain.Dependency
	_ = g.stage(ctx, "dependencies", func() error {
		deps = ResolveDependencies(gr, jobs)
		return nil
	})

	if g.strictAcyclic {
		if _, err := BuildDAG(jobs, deps); err != nil {
			return nil, err
		}
	}

	return &domain.Workflow{
		Name:         g.name,
		Jobs:         jobs,
		Dependencies: deps,
		Catalog:      catalog,
	}, nil
}

// stage выполняет одну стадию генерации в отдельном span и
// записывает её длительность.
func (g *Generator) stage(ctx context.Context, name string, fn func() error) error {
	_, span := g.tracer.Start(ctx, "daxgen."+name)
	defer span.End()

	start := time.Now()
	err := fn()
	g.metrics.ObserveStage(name, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
