// Package storage открывает и записывает артефакты по URI.
//
// Поддерживаемые схемы:
//   - локальный путь или file:///path — Local
//   - s3://bucket/key — S3Backend (AWS S3 или MinIO)
//
// Router выбирает бэкенд по схеме URI. Генератор читает через него
// исходные графы и пишет документ workflow и каталог реплик.
package storage
