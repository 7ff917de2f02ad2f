package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel every missing-record error matches.
var ErrNotFound = errors.New("not found")

// ErrSaveInProgress is returned when a record already has a save outstanding.
var ErrSaveInProgress = errors.New("save already in progress")

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// RemoteError wraps a store failure.
type RemoteError struct {
	Op  string
	Err error
}

func (e RemoteError) Error() string {
	return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
}

func (e RemoteError) Unwrap() error { return e.Err }

// AuthError never says which credential was wrong.
type AuthError struct {
	Reason string
}

func (e AuthError) Error() string { return "invalid credentials" }

func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func IsAuth(err error) bool {
	var ae AuthError
	return errors.As(err, &ae)
}

func IsRemote(err error) bool {
	var re RemoteError
	return errors.As(err, &re)
}
