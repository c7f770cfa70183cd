// Package errs defines the application error codes shared by the store,
// the services and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. The HTTP layer maps each one to a status.
const (
	EUnauthenticated = "unauthenticated"
	ENotFound        = "not found"
	EConflict        = "conflict"
	EInvalid         = "invalid"
	EInternal        = "internal error"
)

// InternalMessage is what callers see for any failure that is not one of
// the coded errors above.
const InternalMessage = "An internal error has occurred."

// Error is a coded application error.
//
// Code is meant for automated handling, Msg is safe to show to the caller,
// Op names the operation that failed and Err carries the underlying cause.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil && e.Msg != e.Err.Error():
		var b strings.Builder
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
		return b.String()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return fmt.Sprintf("<%s>", e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the outermost coded error in err's chain,
// or EInternal when there is none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return EInternal
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return ErrorCode(e.Err)
	}
	return EInternal
}

// ErrorMessage returns the caller-facing message of err. Uncoded and
// internal errors collapse to InternalMessage so storage details never leak.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return InternalMessage
	}
	if e.Code == EInternal {
		return InternalMessage
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return ErrorMessage(e.Err)
	}
	return InternalMessage
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return ErrorCode(err) == code
}

func NotFound(op, msg string) *Error {
	return &Error{Code: ENotFound, Op: op, Msg: msg}
}

func Conflict(op, msg string) *Error {
	return &Error{Code: EConflict, Op: op, Msg: msg}
}

func Unauthenticated(op, msg string) *Error {
	return &Error{Code: EUnauthenticated, Op: op, Msg: msg}
}

// Invalid wraps a validation failure. The message of err is shown to the
// caller and err stays reachable through Unwrap.
func Invalid(op string, err error) *Error {
	return &Error{Code: EInvalid, Op: op, Msg: err.Error(), Err: err}
}

// Internal wraps an unexpected failure.
func Internal(op string, err error) *Error {
	return &Error{Code: EInternal, Op: op, Err: err}
}
