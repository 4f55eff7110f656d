package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/daxgen/internal/dax"
	"github.com/shaiso/daxgen/internal/engine"
	"github.com/shaiso/daxgen/internal/graphio"
	"github.com/shaiso/daxgen/internal/repo"
)

// ErrorCode — код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnsupported     ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidGraph    ErrorCode = "INVALID_GRAPH"
	ErrCodeTooLarge        ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalError   ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotConfigured   ErrorCode = "NOT_CONFIGURED"
	ErrCodeInvalidTemplate ErrorCode = "INVALID_TEMPLATE"
)

// ErrorResponse — структура ответа с ошибкой.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — детали ошибки.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DataResponse — структура успешного ответа.
type DataResponse struct {
	Data any `json:"data"`
}

// ListResponse — структура ответа со списком.
type ListResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success отправляет успешный ответ с данными.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// Created отправляет ответ о создании ресурса.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, DataResponse{Data: data})
}

// Accepted отправляет ответ 202.
func Accepted(w http.ResponseWriter, data any) {
	JSON(w, http.StatusAccepted, DataResponse{Data: data})
}

// NoContent отправляет ответ без тела (204).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// List отправляет ответ со списком.
func List(w http.ResponseWriter, data any, total int) {
	JSON(w, http.StatusOK, ListResponse{Data: data, Total: total})
}

// Error отправляет ответ с ошибкой.
func Error(w http.ResponseWriter, status int, code ErrorCode, message string) {
	JSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound отправляет ошибку 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// NotConfigured отправляет ошибку 503 для выключенных подсистем.
func NotConfigured(w http.ResponseWriter, message string) {
	Error(w, http.StatusServiceUnavailable, ErrCodeNotConfigured, message)
}

// InternalError отправляет ошибку 500.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// HandleError преобразует ошибку генерации или хранилища в HTTP ответ.
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		Error(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())
	case errors.Is(err, graphio.ErrUnsupportedFormat):
		Error(w, http.StatusUnprocessableEntity, ErrCodeUnsupported, err.Error())
	case errors.Is(err, engine.ErrNotBipartite),
		errors.Is(err, engine.ErrMissingAttribute),
		errors.Is(err, dax.ErrInvalidReplica),
		errors.Is(err, engine.ErrCyclicDependency):
		Error(w, http.StatusUnprocessableEntity, ErrCodeInvalidGraph, err.Error())
	case errors.Is(err, engine.ErrTemplateParse), errors.Is(err, engine.ErrTemplateRender):
		Error(w, http.StatusUnprocessableEntity, ErrCodeInvalidTemplate, err.Error())
	case errors.Is(err, graphio.ErrDecode), errors.Is(err, repo.ErrInvalidName):
		BadRequest(w, err.Error())
	case errors.Is(err, graphio.ErrEncodeNotSupported):
		Error(w, http.StatusUnprocessableEntity, ErrCodeUnsupported, err.Error())
	case errors.Is(err, repo.ErrNotFound):
		NotFound(w, err.Error())
	default:
		InternalError(w, logger, err)
	}
	return true
}
