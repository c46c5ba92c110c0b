package errors

import (
	"fmt"
	"time"
)

// NotFound creates a file-not-found error.
func NotFound(path string) *Error {
	return New(KindNotFound, "file does not exist", path)
}

// AccessDenied creates a file access error.
func AccessDenied(path string, cause error) *Error {
	return Wrap(cause, KindAccessDenied, "cannot access file", path)
}

// Empty creates an empty-file error.
func Empty(path string) *Error {
	return New(KindEmpty, "file is empty", path)
}

// ReadFailed creates a read error.
func ReadFailed(path string, cause error) *Error {
	return Wrap(cause, KindReadError, "failed to read file", path)
}

// ParseFailed creates a parse error.
func ParseFailed(path, reason string) *Error {
	return New(KindParseError, reason, path)
}

// Timeout creates a timeout error.
func Timeout(path string, waited time.Duration) *Error {
	return New(KindTimeout, fmt.Sprintf("timed out after %s waiting for a valid value", waited), path)
}

// WatcherFailed creates a watcher startup error.
func WatcherFailed(path string, cause error) *Error {
	return Wrap(cause, KindWatcherError, "failed to start file watcher", path)
}
