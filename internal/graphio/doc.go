// Package graphio читает и пишет двудольные графы в разных форматах.
//
// Поддерживаемые форматы (DefaultRegistry):
//   - json    (.json)             — node-link документ
//   - graphml (.graphml, .gml)    — GraphML XML
//   - gexf    (.gexf, .gxf)       — GEXF XML
//   - gob     (.gob)              — снимок графа в encoding/gob
//   - msgpack (.msgpack, .mpk)    — снимок графа в MessagePack
//
// Формат выбирается по расширению файла. Loader открывает URI через
// пакет storage и декодирует содержимое; источники pg:<name> читаются из
// хранилища графов.
package graphio
