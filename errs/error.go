package errs

import (
	"errors"
	"fmt"
)

// Application error codes. They map roughly onto HTTP status codes, but
// the rest of the app only ever deals in these codes, never in statuses.
const (
	ECONFLICT     = "conflict"     // resource already exists (duplicate handle, duplicate like)
	EINVALID      = "invalid"      // client provided invalid data
	ENOTFOUND     = "not_found"    // resource does not exist
	EUNAUTHORIZED = "unauthorized" // missing or bad credentials / session
	EUNAVAILABLE  = "unavailable"  // a backing store could not be reached
	EINTERNAL     = "internal"     // anything unexpected
)

// Error is the application error type. Code is machine-readable,
// Message is safe to show to a client. Err optionally carries the
// underlying cause, which only ever surfaces in logs.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chirper error: code=%s message=%s cause=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("chirper error: code=%s message=%s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error from a code and a format string.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap builds an *Error around an underlying cause.
func Wrap(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the code from err. Non-application errors
// report EINTERNAL, a nil error reports the empty string.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage extracts the client-safe message from err. For
// non-application errors it returns a generic message, so internals
// (driver errors, hashes, stack data) never reach a response body.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
