package errprocess

import (
	"errors"
	"net/http"

	"ping_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// GenericMessage 對外回應時不洩漏內部錯誤
const GenericMessage = "Something went wrong"

// 錯誤分類
var (
	ErrValidation  = errors.New("validation error")
	ErrAuth        = errors.New("unauthorized")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence error")
)

// Error carries a kind sentinel, a client safe message and the cause
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap exposes both kind and cause to errors.Is / errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Validation invalid input
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

// Auth missing or invalid credentials
func Auth(msg string) error {
	return &Error{Kind: ErrAuth, Msg: msg}
}

// Forbidden authenticated but not allowed
func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Msg: msg}
}

// NotFound referenced entity does not exist
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

// Conflict unique constraint hit
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Msg: msg}
}

// Persistence wrap storage failure and log it
func Persistence(err error, msg string) error {
	logger.Log.Error(msg, zap.Error(err))
	return &Error{Kind: ErrPersistence, Msg: msg, Err: err}
}

// HTTPStatus map err kind to http status, fallback for persistence and unknown errors
func HTTPStatus(err error, fallback int) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return fallback
	}
}

// PublicMessage message safe to return to client
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && !errors.Is(err, ErrPersistence) && !errors.Is(err, ErrConflict) {
		return e.Msg
	}
	return GenericMessage
}
