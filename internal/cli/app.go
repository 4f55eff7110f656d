package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/daxgen/internal/config"
	"github.com/shaiso/daxgen/internal/engine"
	"github.com/shaiso/daxgen/internal/graphio"
	"github.com/shaiso/daxgen/internal/mq"
	"github.com/shaiso/daxgen/internal/repo"
	"github.com/shaiso/daxgen/internal/service"
	"github.com/shaiso/daxgen/internal/storage"
	"github.com/shaiso/daxgen/internal/telemetry"
)

// ErrNotConfigured — подсистема не настроена (нет URL в конфигурации).
var ErrNotConfigured = errors.New("not configured")

// GlobalOptions — значения persistent-флагов корневой команды.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Vars       []string
	JSON       bool
	APIURL     string
}

// App — зависимости одной команды. Подключения к внешним системам
// создаются лениво и закрываются в Close.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *telemetry.Metrics

	tracer  *telemetry.TracerProvider
	storage *storage.Router
	pool    *pgxpool.Pool
	conn    *mq.Connection
}

// NewApp загружает конфигурацию и применяет поверх неё флаги.
func (o *GlobalOptions) NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.LogFormat = o.LogFormat
	}
	vars, err := parseVars(o.Vars)
	if err != nil {
		return nil, err
	}
	for k, v := range vars {
		cfg.SetVar(k, v)
	}

	logger := telemetry.SetupLogger(telemetry.LogOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if names := cfg.VarNames(); len(names) > 0 {
		logger.Debug("template variables", "names", names)
	}

	tp, err := telemetry.InitTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: telemetry.NewMetrics(),
		tracer:  tp,
	}, nil
}

// Storage возвращает маршрутизатор хранилища. S3 подключается, только
// если он настроен.
func (a *App) Storage(ctx context.Context) (*storage.Router, error) {
	if a.storage != nil {
		return a.storage, nil
	}

	var s3 storage.Backend
	if a.Config.S3Enabled() {
		b, err := storage.NewS3Backend(ctx, a.Config.S3)
		if err != nil {
			return nil, err
		}
		s3 = b
	}
	a.storage = storage.NewRouter(storage.NewLocal(), s3)
	return a.storage, nil
}

// GraphRepo подключается к PostgreSQL и возвращает хранилище графов.
func (a *App) GraphRepo(ctx context.Context) (*repo.GraphRepo, error) {
	if a.Config.DatabaseURL == "" {
		return nil, fmt.Errorf("graph store: %w (set DB_URL or database.url)", ErrNotConfigured)
	}
	if a.pool == nil {
		pool, err := repo.NewPool(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		a.Logger.Info("connected to database")
	}

	graphs := repo.NewGraphRepo(a.pool)
	if err := graphs.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return graphs, nil
}

// Connection подключается к RabbitMQ и объявляет топологию.
func (a *App) Connection(ctx context.Context) (*mq.Connection, mq.Topology, error) {
	topology := mq.NewTopology(a.Config.Exchange)
	if a.Config.RabbitMQURL == "" {
		return nil, topology, fmt.Errorf("message queue: %w (set RABBITMQ_URL or rabbitmq.url)", ErrNotConfigured)
	}
	if a.conn == nil {
		conn, err := mq.NewConnection(a.Config.RabbitMQURL, a.Logger)
		if err != nil {
			return nil, topology, err
		}
		a.conn = conn
	}
	if err := topology.Setup(ctx, a.conn); err != nil {
		return nil, topology, err
	}
	return a.conn, topology, nil
}

// Publisher возвращает издателя событий или nil, если RabbitMQ не
// настроен.
func (a *App) Publisher(ctx context.Context) (*mq.Publisher, error) {
	if a.Config.RabbitMQURL == "" {
		return nil, nil
	}
	conn, topology, err := a.Connection(ctx)
	if err != nil {
		return nil, err
	}
	return mq.NewPublisher(conn, topology, a.Logger), nil
}

// Service собирает сервис генерации. Хранилище графов и уведомления
// подключаются, если настроены.
func (a *App) Service(ctx context.Context) (*service.Service, error) {
	router, err := a.Storage(ctx)
	if err != nil {
		return nil, err
	}

	var store graphio.GraphStore
	if a.Config.DatabaseURL != "" {
		graphs, err := a.GraphRepo(ctx)
		if err != nil {
			return nil, err
		}
		store = graphs
	}

	cfg := service.Config{
		Generator: a.GeneratorConfig(),
		Loader:    graphio.NewLoader(graphio.DefaultRegistry(), router, store),
		Storage:   router,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
	}

	publisher, err := a.Publisher(ctx)
	if err != nil {
		return nil, err
	}
	if publisher != nil {
		cfg.Notifier = publisher
	}

	return service.New(cfg), nil
}

// GeneratorConfig возвращает параметры генератора из конфигурации.
func (a *App) GeneratorConfig() engine.Config {
	return engine.Config{
		Name:          a.Config.WorkflowName,
		DefaultSite:   a.Config.DefaultSite,
		Vars:          a.Config.Vars,
		Env:           config.Environ(),
		StrictAcyclic: a.Config.StrictAcyclic,
		Logger:        a.Logger,
		Metrics:       a.Metrics,
	}
}

// Close отправляет метрики в Pushgateway и закрывает подключения.
func (a *App) Close(ctx context.Context) {
	if err := a.Metrics.Push(ctx, a.Config.PushgatewayURL, "daxgen"); err != nil {
		a.Logger.Warn("failed to push metrics", "error", err)
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.Logger.Warn("failed to close RabbitMQ connection", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.Logger.Warn("failed to shutdown tracing", "error", err)
	}
}

// parseVars разбирает значения --var в формате key=value.
func parseVars(kvs []string) (map[string]string, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", kv)
		}
		vars[k] = v
	}
	return vars, nil
}
