// Package engine содержит генератор абстрактного workflow.
//
// Включает:
//   - classify.go  — разбиение двудольного графа на файлы и задачи
//   - catalog.go   — построение каталога файлов и реплик
//   - jobs.go      — построение задач, подстановка файлов в аргументы
//   - deps.go      — вычисление рёбер порядка между задачами
//   - dag.go       — топологический порядок и проверка циклов
//   - template.go  — рендеринг Go templates в exec_args ({{ .Vars.x }})
//   - generator.go — сборка всех стадий в один запуск
//
// Engine не читает и не пишет файлы: вход — graph.Graph, выход —
// domain.Workflow. Сериализацией занимается пакет dax.
package engine
