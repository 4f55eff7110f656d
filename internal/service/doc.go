// Package service собирает генератор в один запуск: загрузка графа,
// генерация workflow, запись DAX и каталога реплик в хранилище,
// метрики и уведомление о результате.
//
// Service используется CLI (generate), HTTP API и обработчиком очереди
// запросов (worker).
package service
