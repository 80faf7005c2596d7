package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input, rejected before any write
	ValidationError struct {
		Message string
	}

	// ConcurrencyError indicates a conflicting concurrent write was detected
	// while assigning a version number. The operation is safe to retry.
	ConcurrencyError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string    { return e.Message }
func (e *ValidationError) Error() string  { return e.Message }
func (e *ConcurrencyError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int    { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int  { return http.StatusBadRequest }
func (e *ConcurrencyError) StatusCode() int { return http.StatusConflict }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConcurrency  = errors.New("concurrent write conflict")
	ErrLockConflict = errors.New("document locked")
)

// Is hooks so typed errors match their sentinels
func (e *NotFoundError) Is(target error) bool    { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool  { return target == ErrValidation }
func (e *ConcurrencyError) Is(target error) bool { return target == ErrConcurrency }

// LockConflictError indicates a non-stale edit lock is held by another user.
// Recoverable: the caller may retry later or surface the holder's identity.
type LockConflictError struct {
	HeldBy   string
	LockedAt time.Time
}

// Error implements the error interface
func (e *LockConflictError) Error() string {
	return fmt.Sprintf("document locked by %s", e.HeldBy)
}

// StatusCode implements the HTTPError interface
func (e *LockConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrLockConflict
func (e *LockConflictError) Is(target error) bool {
	return target == ErrLockConflict
}
