package session

import "errors"

// Error means there is no valid session, or not the one the caller needs.
// The remedy is always to log in again.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// IsSessionError reports whether err is, or wraps, a session Error.
func IsSessionError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
