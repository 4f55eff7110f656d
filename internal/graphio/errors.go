package graphio

import (
	"errors"
	"fmt"
)

// Ошибки форматов.
var (
	// ErrUnsupportedFormat — расширение или имя формата не поддерживается.
	ErrUnsupportedFormat = errors.New("unsupported graph format")

	// ErrDecode — содержимое не удалось разобрать.
	ErrDecode = errors.New("graph decode failed")

	// ErrEncodeNotSupported — формат поддерживает только чтение.
	ErrEncodeNotSupported = errors.New("format does not support encoding")

	// ErrNoGraphStore — источник pg: без настроенного хранилища графов.
	ErrNoGraphStore = errors.New("graph store is not configured")
)

// FormatError — формат файла не поддерживается.
type FormatError struct {
	Path string // путь или URI источника
	Ext  string // расширение без точки; пустое, если его нет
}

// Error реализует интерфейс error.
func (e *FormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported graph format: %s has no extension", e.Path)
	}
	return fmt.Sprintf("unsupported graph format %q: %s", e.Ext, e.Path)
}

// Unwrap возвращает ErrUnsupportedFormat.
func (e *FormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// DecodeError — ошибка разбора документа.
type DecodeError struct {
	Format string // имя формата
	Err    error  // исходная ошибка
}

// Error реализует интерфейс error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s graph: %v", e.Format, e.Err)
}

// Unwrap возвращает ErrDecode и исходную ошибку.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

func decodeError(format string, err error) error {
	return &DecodeError{Format: format, Err: err}
}
