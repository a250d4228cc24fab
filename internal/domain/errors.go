package domain

import (
	"errors"
	"fmt"
)

// Conflict codes surfaced to clients so the UI can pick the right message.
const (
	CodeDuplicateReservation = "duplicate_reservation"
	CodeTripFull             = "trip_full"
	CodeTripCancelled        = "trip_cancelled"
	CodeInvalidTransition    = "invalid_transition"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError is a definitional outcome of contention or state: a full
// trip, a duplicate booking, a forbidden status transition. Never retried.
type ConflictError struct {
	Code string
	Msg  string
	Err  error
}

func (e ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Code != "" {
		return e.Code
	}
	return "conflict"
}

func (e ConflictError) Unwrap() error { return e.Err }

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

// UnavailableError means the request was refused before any work happened:
// maintenance mode, or the store not answering in time.
type UnavailableError struct {
	Msg string
	Err error
}

func (e UnavailableError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "service unavailable"
}

func (e UnavailableError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

// ConflictCode returns the code of a ConflictError, or "" for anything else.
func ConflictCode(err error) string {
	var target ConflictError
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}
