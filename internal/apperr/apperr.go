package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindTransient       Kind = "transient"
	KindPartialFailure  Kind = "partial_failure"
	KindUploadFailed    Kind = "upload_failed"
	KindInternal        Kind = "internal"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Msg: "unauthenticated"}
	ErrForbidden       = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrValidation      = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrConflict        = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrNotFound        = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrTransient       = &Error{Kind: KindTransient, Msg: "temporarily unavailable"}
	ErrPartialFailure  = &Error{Kind: KindPartialFailure, Msg: "partially applied"}
	ErrUploadFailed    = &Error{Kind: KindUploadFailed, Msg: "upload failed"}
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil && e.Msg != "" {
		return e.Msg + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func StatusOf(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindTransient:
		return http.StatusServiceUnavailable
	case KindUploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// LoginPath is where guard failures send the caller.
const LoginPath = "/login"

// Respond writes err as a JSON error body and aborts the request.
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)
	body := gin.H{"error": err.Error(), "kind": kind}
	if kind == KindInternal {
		body["error"] = "internal error"
	}
	if kind == KindUnauthenticated || kind == KindForbidden {
		body["redirect"] = LoginPath
	}
	c.AbortWithStatusJSON(StatusOf(err), body)
}
