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
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrCycle        = errors.New("parent cycle")
	ErrNotEmpty     = errors.New("folder not empty")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Domain error types implementing HTTPError
type (
	// NotFoundError indicates a referenced id does not exist
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates bad input shape: empty name, wrong kind, cross-deal reference
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// CycleError reports a parent assignment that would make a node its own
// ancestor, or a stored parent chain that never reaches a root.
type CycleError struct {
	Message string
	NodeID  string
}

func (e *CycleError) Error() string        { return e.Message }
func (e *CycleError) StatusCode() int      { return http.StatusConflict }
func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// NotEmptyError is returned by a non-cascading delete of a folder that still has children
type NotEmptyError struct {
	Message    string
	NodeID     string
	ChildCount int
}

func (e *NotEmptyError) Error() string        { return e.Message }
func (e *NotEmptyError) StatusCode() int      { return http.StatusConflict }
func (e *NotEmptyError) Is(target error) bool { return target == ErrNotEmpty }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (node, requirement, deal)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
