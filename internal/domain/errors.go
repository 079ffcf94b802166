package domain

import (
	"errors"
	"net/http"
)

// Sentinels for errors.Is. The typed errors below match one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrStoreUnavailable marks a persistence failure. It must never be
	// read as an allow or a deny.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// HTTPError is implemented by errors that carry their own status code.
type HTTPError interface {
	error
	StatusCode() int
}

// NotFoundError is also returned for resources the caller may not know
// exist, so its message never names the owner.
type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string        { return e.Message }
func (e *UnauthorizedError) StatusCode() int      { return http.StatusUnauthorized }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// ForbiddenError is an access denial with a machine-readable reason such as
// "not_assigned" or "purchase_required".
type ForbiddenError struct {
	Message string
	Reason  string
}

func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "forbidden: " + e.Reason
}

func (e *ForbiddenError) StatusCode() int      { return http.StatusForbidden }
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// ConflictError names the existing resource that blocked a create.
type ConflictError struct {
	Message      string
	ResourceType string // object, folder, assignment, user
	ResourceID   string
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) StatusCode() int      { return http.StatusConflict }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
