// Package mq связывает генератор с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с переподключением
//   - topology.go   — обменник событий, очередь запросов и DLQ
//   - publisher.go  — публикация событий и запросов
//   - consumer.go   — потребление запросов на генерацию
//
// Типы сообщений:
//   - workflow.generate  — запрос на генерацию (очередь daxgen.requests)
//   - workflow.generated — workflow и каталог записаны
//   - workflow.failed    — генерация завершилась ошибкой
package mq
