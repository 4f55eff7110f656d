// Package telemetry обеспечивает наблюдаемость генератора.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики и отправка в Pushgateway
//   - tracing.go — OpenTelemetry трейсинг стадий генерации
//
// CLI и HTTP-сервер используют единый формат логирования. Сервер отдаёт
// метрики на /metrics, CLI может отправить их в Pushgateway после
// запуска.
package telemetry
