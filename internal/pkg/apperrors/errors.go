package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Pipeline errors
var (
	// ErrSourceUnavailable means the upstream API could not be reached at all
	// (DNS failure, connection refused, timeout). Fatal to a sync run.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceRejected means the upstream API answered with an error status.
	// Fatal to a sync run unless the caller special-cases the status code.
	ErrSourceRejected = errors.New("source rejected request")

	// ErrPersistenceFailure means a single record could not be written.
	// Non-fatal: the run continues with the next record.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrConfiguration means required configuration is missing or invalid.
	// Fatal before the run ever starts.
	ErrConfiguration = errors.New("invalid configuration")
)

// Ops API errors
var (
	ErrResourceNotFound = errors.New("resource not found")
)

// SourceError carries structured context about a failed upstream call.
// StatusCode is the HTTP status the source answered with, or zero when the
// source was never reached. Callers decide policy (abort, treat as empty) on
// the code field, never on the message text.
type SourceError struct {
	Err        error // ErrSourceUnavailable or ErrSourceRejected
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Err.Error(), e.StatusCode, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap implements errors.Unwrap so errors.Is matches the sentinel
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceUnavailable creates a SourceError for a transport-level failure
func NewSourceUnavailable(message string) *SourceError {
	return &SourceError{
		Err:     ErrSourceUnavailable,
		Message: message,
	}
}

// NewSourceRejected creates a SourceError for an upstream error response
func NewSourceRejected(statusCode int, message string) *SourceError {
	return &SourceError{
		Err:        ErrSourceRejected,
		StatusCode: statusCode,
		Message:    message,
	}
}

// StatusCode extracts the HTTP status from a source error, or zero when the
// error carries none.
func StatusCode(err error) int {
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return srcErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a source rejection with a 404 status.
// Optional sub-resource fetches use this to map "not found" to an empty
// collection instead of failing the run.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
