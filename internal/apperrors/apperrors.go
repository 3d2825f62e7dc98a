// Package apperrors описывает типизированные ошибки сервиса.
//
// Репозитории и сервисы возвращают *Error с одним из видов Kind,
// обработчики HTTP выбирают код ответа по виду, не разбирая текст ошибки:
//
//	if errors.Is(err, apperrors.ErrNotFound) {
//	    ...
//	}
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind задаёт вид ошибки.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindNotFound      Kind = "NOT_FOUND"
	KindAlreadyExists Kind = "ALREADY_EXISTS"
	KindStore         Kind = "STORE"
)

// HTTPStatus возвращает HTTP-код для вида ошибки.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindAlreadyExists:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error представляет ошибку сервиса с видом и сообщением для клиента.
type Error struct {
	Kind    Kind
	Message string
	cause   error
	generic bool
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap возвращает исходную ошибку.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is сравнивает ошибку с общими sentinel-значениями (ErrNotFound и т.п.)
// по виду. Конкретные sentinel-значения пакетов, например ErrNoTags,
// совпадают только сами с собой.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.generic && e.Kind == t.Kind
}

// Sentinel-значения для errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "validation error", generic: true}
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found", generic: true}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists, Message: "already exists", generic: true}
	ErrStore         = &Error{Kind: KindStore, Message: "store failure", generic: true}
)

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func AlreadyExists(msg string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: msg}
}

// Store оборачивает ошибку хранилища. Сообщение предназначено для логов,
// клиенту уходит только общий текст.
func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Message: op, cause: err}
}

// KindOf возвращает вид ошибки; ошибки без вида считаются ошибками хранилища.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// MessageOf возвращает сообщение для клиента.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindStore {
		return e.Message
	}
	return "internal server error"
}
