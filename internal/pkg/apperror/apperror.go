package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindPermission
	KindNotFound
	KindConflict
	KindStorage
)

func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Kind    Kind
	Message string
	Details []FieldError
	Err     error

	callers []uintptr
}

func newError(kind Kind, message string) *AppError {
	pcs := make([]uintptr, 32)
	// skip runtime.Callers, newError and the exported constructor
	n := runtime.Callers(3, pcs)
	return &AppError{Kind: kind, Message: message, callers: pcs[:n]}
}

// StackTrace formats the call stack recorded where the error was created.
func (e *AppError) StackTrace() string {
	if len(e.callers) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.callers)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string, details ...FieldError) *AppError {
	e := newError(KindValidation, message)
	e.Details = details
	return e
}

func Auth(message string) *AppError {
	return newError(KindAuth, message)
}

func Forbidden(message string) *AppError {
	return newError(KindPermission, message)
}

func NotFound(message string) *AppError {
	return newError(KindNotFound, message)
}

func Conflict(message string) *AppError {
	return newError(KindConflict, message)
}

// Storage wraps a persistence or filesystem failure. The wrapped error is
// logged but never shown to the caller.
func Storage(err error) *AppError {
	e := newError(KindStorage, "Internal server error")
	e.Err = err
	return e
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
