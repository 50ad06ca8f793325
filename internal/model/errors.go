package model

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("permission denied")
	ErrConflict   = errors.New("conflict")
)

// ValidationError reports malformed input to a constructor or mutator.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a referenced quiz, question or attempt that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AuthorizationError reports an existing entity the actor may not access.
type AuthorizationError struct {
	Resource string
	ActorID  int
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %d may not access %s", e.ActorID, e.Resource)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrForbidden }

// ConflictError reports a stale write against a newer stored version.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Resource, e.ID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ValidationField returns the offending field of a validation error, if any.
func ValidationField(err error) (field, reason string, ok bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field, ve.Reason, true
	}
	return "", "", false
}
