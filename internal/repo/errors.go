package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrInvalidName — пустое или слишком длинное имя графа.
	ErrInvalidName = errors.New("invalid graph name")
)
