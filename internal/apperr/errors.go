// Package apperr описывает классификацию ошибок сервиса.
// Конкретные ошибки оборачивают один из sentinel-ов через %w,
// а проверка идёт через errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUpstream     = errors.New("upstream API error")
	ErrDecode       = errors.New("response decode error")
	ErrStorage      = errors.New("storage error")
	ErrNotFound     = errors.New("not found")
	ErrConfig       = errors.New("configuration error")
	ErrInvalidInput = errors.New("invalid input")
)

type kind struct {
	err    error
	code   string
	status int
}

// порядок важен: первая совпавшая категория выигрывает
var kinds = []kind{
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrConfig, "CONFIG_ERROR", http.StatusInternalServerError},
	{ErrDecode, "DECODE_ERROR", http.StatusBadGateway},
	{ErrUpstream, "UPSTREAM_API_ERROR", http.StatusBadGateway},
	{ErrStorage, "DB_ERROR", http.StatusInternalServerError},
}

// Code возвращает стабильный код ошибки для ответа API.
func Code(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return "INTERNAL_ERROR"
}

// HTTPStatus возвращает HTTP статус, соответствующий категории ошибки.
func HTTPStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}
