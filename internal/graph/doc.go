// Package graph содержит направленный граф с атрибутами узлов.
//
// Включает:
//   - graph.go     — узлы, рёбра, предшественники и последователи
//   - attrs.go     — приведение атрибутов к string/bool/int/list
//   - bipartite.go — раскраска в два цвета по компонентам связности
//   - snapshot.go  — плоское представление для сериализации
//
// Граф ничего не знает о файлах и задачах: классы узлов назначает
// engine.Classify.
package graph
