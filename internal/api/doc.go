// Package api содержит HTTP API сервер генератора.
//
// Структура:
//   - handler.go          — Handler с DI (сервис, хранилище графов, очередь)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (recovery, tracing, metrics, logging)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - workflow_handler.go — компиляция графов, очередь запросов, форматы, health/ready
//   - graph_handler.go    — хранилище графов /graphs
package api
