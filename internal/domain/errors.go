package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrValidation     = errors.New("validation failed")
	ErrCompileRequest = errors.New("compile request failed")
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a node, project or template was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates a tree operation was rejected before any mutation
	ValidationError struct {
		Message string
		Err     error // Optional cause (e.g. a NotFoundError for a missing parent)
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrNotFound
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Unwrap exposes the cause so errors.Is(err, ErrNotFound) also works for
// validation failures caused by a missing path segment.
func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError represents a sibling name collision.
// It matches both ErrConflict and ErrValidation: a collision is a rejected
// tree operation, but HTTP callers get a 409.
type ConflictError struct {
	Message string // Human-readable error message
	Name    string // The contested sibling name
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict and ErrValidation
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrValidation
}

// CompileRequestError means the remote compile service reported an error or
// the network call failed. It is non-fatal; the caller may retry.
type CompileRequestError struct {
	Message string
	Err     error // Transport cause, nil when the service reported the error
}

func (e *CompileRequestError) Error() string {
	return e.Message
}

func (e *CompileRequestError) StatusCode() int {
	return http.StatusBadGateway
}

func (e *CompileRequestError) Is(target error) bool {
	return target == ErrCompileRequest
}

func (e *CompileRequestError) Unwrap() error {
	return e.Err
}
