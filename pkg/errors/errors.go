// Package errors defines the coded errors shared by the sheetcalc
// libraries, the CLI and the HTTP API.
//
// Every failure a caller may want to act on carries a [Code]. Callers test
// codes with [Is] or read them with [GetCode]. The HTTP API turns codes into
// status codes, and the CLI prints [UserMessage].
//
//	if errors.Is(err, errors.ErrCodeCircular) {
//		// reject the edit, the sheet is unchanged
//	}
//
// Formula evaluation problems such as division by zero are not errors of
// this package. Evaluation returns them as values, see package formula.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	// Rejected input.
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidName     Code = "INVALID_NAME"
	ErrCodeInvalidFormula  Code = "INVALID_FORMULA"
	ErrCodeInvalidVariable Code = "INVALID_VARIABLE"
	ErrCodeRejectedVar     Code = "REJECTED_VARIABLE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidID       Code = "INVALID_ID"
	ErrCodeMissingContent  Code = "MISSING_CONTENT"

	// An edit that would make a cell depend on itself.
	ErrCodeCircular Code = "CIRCULAR_DEPENDENCY"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeWorkbookNotFound Code = "WORKBOOK_NOT_FOUND"

	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// Error is a coded error. Message is meant for users; Cause, when set, is
// the lower-level failure.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// asError finds the outermost *Error in err's chain.
func asError(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error, without code or
// cause. Other errors are returned as their Error string.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// CircularError names the cell where a dependency cycle closed.
type CircularError struct {
	Cell string
}

func (e *CircularError) Error() string {
	return "circular dependency through " + e.Cell
}

// Circular returns an ErrCodeCircular error caused by a *CircularError for
// cell.
func Circular(cell string) *Error {
	return Wrap(ErrCodeCircular, &CircularError{Cell: cell}, "cell %s would create a circular dependency", cell)
}
