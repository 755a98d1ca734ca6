package ecode

import (
	"errors"
	"fmt"
)

const errorName = "PaginatorError"

// Error is a failure carrying a stable numeric code.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// New creates an error with code and message. An empty message falls back
// to the registered text of the code.
func New(code int, message string) *Error {
	if message == "" {
		message = Text(code)
	}
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code int, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates an error that keeps cause reachable through errors.Unwrap.
func Wrap(code int, message string, cause error) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// Error implements error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%d): %s: %v", errorName, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%d): %s", errorName, e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or -1.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return -1
}

// IsDecode reports whether err is a token decode failure.
func IsDecode(err error) bool { return CodeOf(err) == DecodeErr }

// IsIdentityMismatch reports whether err is a token source mismatch.
func IsIdentityMismatch(err error) bool { return CodeOf(err) == IdentityMismatch }

// IsPaginationFields reports whether err is a pagination fields validation failure.
func IsPaginationFields(err error) bool { return CodeOf(err) == PaginationFieldsErr }
