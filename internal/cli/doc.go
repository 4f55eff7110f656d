// Package cli реализует инструмент командной строки daxgen.
//
// # Обзор
//
// Локальные команды (generate, inspect, formats, convert) работают с
// файлами и S3 напрямую через пакеты engine, graphio и storage.
// Команды graph, serve и worker поднимают PostgreSQL, HTTP API и
// RabbitMQ по конфигурации. Группа remote ходит в HTTP API и не
// импортирует внутренние пакеты сервера.
//
// # Ключевые компоненты
//
// ## App
//
// Собирает зависимости команды из конфигурации: логгер, метрики,
// трейсинг, хранилище, пул PostgreSQL, соединение с RabbitMQ.
// Ресурсы создаются лениво и закрываются в App.Close.
//
// ## Client
//
// HTTP-клиент для daxgen API. Разбирает ответы в обёртках data/list/error.
//
//	client := cli.NewClient("http://localhost:8080")
//	formats, err := client.Formats()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: daxgen inspect graph.json --json | jq .
//
// ## Commands
//
// Каждая команда создаётся фабричной функцией (NewGenerateCmd и т.д.).
// Локальные команды получают runner, который создаёт App после
// парсинга PersistentFlags. Группа remote получает clientFn и outputFn.
package cli
