// Package dax сериализует абстрактный workflow.
//
// Включает:
//   - writer.go  — документ DAX 3.6 (XML) и его разбор
//   - catalog.go — каталог реплик в текстовом формате "lfn url site"
package dax
