package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by the hosted backend.
type Error struct {
	Code    int
	Type    string
	Message string
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Code, e.Type)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Is matches on code, and on type when the target carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Type == "" || t.Type == e.Type)
}

var (
	ErrUnauthorized = &Error{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrNotFound     = &Error{Code: http.StatusNotFound, Message: "not found"}
	ErrTimeout      = &Error{Code: http.StatusRequestTimeout, Message: "request timed out"}
	ErrConflict     = &Error{Code: http.StatusConflict, Message: "conflict"}
	ErrRateLimited  = &Error{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"}

	// ErrSessionActive is returned by CreateSession while the driver
	// already holds a live session.
	ErrSessionActive = &Error{
		Code:    http.StatusUnauthorized,
		Type:    "user_session_already_exists",
		Message: "Creation of a session is prohibited when a session is active.",
	}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Code: http.StatusNotFound, Type: "document_not_found", Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Code: http.StatusUnauthorized, Type: "user_unauthorized", Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Code: http.StatusConflict, Type: "document_already_exists", Message: fmt.Sprintf(format, args...)}
}

func RateLimited(format string, args ...any) *Error {
	return &Error{Code: http.StatusTooManyRequests, Type: "general_rate_limit_exceeded", Message: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsUnauthorized(err error) bool  { return errors.Is(err, ErrUnauthorized) }
func IsConflict(err error) bool      { return errors.Is(err, ErrConflict) }
func IsRateLimited(err error) bool   { return errors.Is(err, ErrRateLimited) }
func IsSessionActive(err error) bool { return errors.Is(err, ErrSessionActive) }
