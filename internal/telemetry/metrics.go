package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "daxgen"

// Статусы запусков генерации.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Metrics — набор Prometheus метрик генератора.
//
// Каждый Metrics владеет собственным реестром: тесты и параллельные
// экземпляры не конфликтуют из-за повторной регистрации.
type Metrics struct {
	Registry *prometheus.Registry

	// RunsTotal — количество запусков по итоговому статусу.
	RunsTotal *prometheus.CounterVec

	// ErrorsTotal — количество ошибок по виду (format, shape, attribute, io).
	ErrorsTotal *prometheus.CounterVec

	// RunDuration — длительность запуска целиком.
	RunDuration *prometheus.HistogramVec

	// StageDuration — длительность стадий генератора.
	StageDuration *prometheus.HistogramVec

	// JobsTotal — количество сгенерированных задач.
	JobsTotal prometheus.Counter

	// DependenciesTotal — количество сгенерированных рёбер.
	DependenciesTotal prometheus.Counter

	// ReplicasTotal — количество реплик в каталогах.
	ReplicasTotal prometheus.Counter

	// HTTPRequestsTotal — запросы к API по методу, маршруту и коду.
	HTTPRequestsTotal *prometheus.CounterVec
}

// NewMetrics создаёт метрики в новом реестре.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of generation runs by final status",
		}, []string{"status"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of failed runs by error kind",
		}, []string{"kind"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Generation run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Generator stage duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"stage"}),
		JobsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Total number of jobs written to workflow documents",
		}),
		DependenciesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dependencies_total",
			Help:      "Total number of dependency edges written to workflow documents",
		}),
		ReplicasTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replicas_total",
			Help:      "Total number of replicas written to replica catalogs",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

// RegisterRuntime добавляет метрики Go runtime и процесса.
// Нужны только долгоживущему серверу.
func (m *Metrics) RegisterRuntime() {
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveStage записывает длительность стадии генератора.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RunSucceeded записывает успешный запуск.
func (m *Metrics) RunSucceeded(d time.Duration, jobs, deps, replicas int) {
	m.RunsTotal.WithLabelValues(StatusSucceeded).Inc()
	m.RunDuration.WithLabelValues(StatusSucceeded).Observe(d.Seconds())
	m.JobsTotal.Add(float64(jobs))
	m.DependenciesTotal.Add(float64(deps))
	m.ReplicasTotal.Add(float64(replicas))
}

// RunFailed записывает неуспешный запуск.
func (m *Metrics) RunFailed(d time.Duration, kind string) {
	m.RunsTotal.WithLabelValues(StatusFailed).Inc()
	m.RunDuration.WithLabelValues(StatusFailed).Observe(d.Seconds())
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// Handler возвращает HTTP handler для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Push отправляет метрики в Pushgateway. Пустой url — ничего не делает.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
