package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName — имя трейсера генератора.
const TracerName = "github.com/shaiso/daxgen"

// TracingConfig — настройки трейсинга.
type TracingConfig struct {
	// Enabled — включает экспорт спанов.
	Enabled bool

	// Endpoint — адрес OTLP коллектора (например, "localhost:4317").
	Endpoint string

	// ServiceName — имя сервиса в ресурсе.
	ServiceName string

	// ServiceVersion — версия сервиса.
	ServiceVersion string

	// SampleRate — доля сэмплируемых трейсов (0.0 - 1.0).
	SampleRate float64
}

// TracerProvider — обёртка над sdktrace.TracerProvider.
// Для выключенного трейсинга provider равен nil.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	logger   *slog.Logger
}

// InitTracing настраивает глобальный TracerProvider.
//
// При выключенном трейсинге глобальный провайдер остаётся no-op, и
// спаны генератора ничего не стоят.
func InitTracing(ctx context.Context, cfg TracingConfig, logger *slog.Logger) (*TracerProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		logger.Debug("tracing disabled")
		return &TracerProvider{logger: logger}, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "daxgen"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing initialized",
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	)

	return &TracerProvider{provider: tp, logger: logger}, nil
}

// Shutdown сбрасывает буферы и останавливает провайдер.
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	p.logger.Debug("shutting down tracer provider")
	return p.provider.Shutdown(ctx)
}

// Tracer возвращает трейсер генератора из глобального провайдера.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
