package errors

import (
	"fmt"
	"time"
)

// Kind classifies an error condition raised by the engine.
type Kind string

const (
	// KindNone is the explicit "no error" state. A nil *Error and an Error
	// with KindNone both report no error; callers can always ask for the
	// last error regardless of outcome.
	KindNone Kind = "NONE"

	// File access errors
	KindNotFound     Kind = "FILE_NOT_FOUND"
	KindAccessDenied Kind = "FILE_ACCESS_DENIED"
	KindEmpty        Kind = "FILE_EMPTY"
	KindReadError    Kind = "FILE_READ_ERROR"

	// Content errors
	KindParseError Kind = "PARSE_ERROR"

	// Engine errors
	KindTimeout      Kind = "TIMEOUT"
	KindWatcherError Kind = "WATCHER_ERROR"
	KindUnknown      Kind = "UNKNOWN"
)

// Error is a structured error carrying the file path it concerns and the
// time it was observed.
type Error struct {
	Kind      Kind
	Message   string
	Path      string
	Timestamp time.Time
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil || e.Kind == KindNone {
		return "no error"
	}
	msg := fmt.Sprintf("[%s]", e.Kind)
	if e.Path != "" {
		msg += " " + e.Path + ":"
	}
	msg += " " + e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsError reports whether e represents an actual error condition.
func (e *Error) IsError() bool {
	return e != nil && e.Kind != KindNone
}

// New creates a new Error for the given path, stamped with the current time.
func New(kind Kind, message, path string) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Path:      path,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an underlying error with engine context.
func Wrap(err error, kind Kind, message, path string) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Path:      path,
		Timestamp: time.Now(),
		Cause:     err,
	}
}

// Is reports whether err is (or wraps) an Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// GetKind extracts the Kind from an error chain. Returns KindNone for nil
// and KindUnknown for foreign errors.
func GetKind(err error) Kind {
	if err == nil {
		return KindNone
	}
	e, ok := err.(*Error)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetKind(unwrapper.Unwrap())
		}
		return KindUnknown
	}
	if e == nil {
		return KindNone
	}
	return e.Kind
}
