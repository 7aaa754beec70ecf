package apperror

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a required field is empty or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// DuplicateNameError is returned when a category or personality name collides
// case-insensitively with an existing one.
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s named %q already exists", e.Entity, e.Name)
}

// ProtectedEntityError is returned on attempts to edit or delete the default
// personality or an uncategorized bucket.
type ProtectedEntityError struct {
	Entity string
	Id     string
}

func (e *ProtectedEntityError) Error() string {
	return fmt.Sprintf("%s %q is protected", e.Entity, e.Id)
}

type NotFoundError struct {
	Entity string
	Id     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Id)
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, Id: id}
}

// NetworkError wraps a failed call to the model collaborator or a durable store.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// CancelledError marks a user-initiated stop. It is never reported as a failure.
type CancelledError struct {
	Reason string
}

func (e *CancelledError) Error() string {
	if e.Reason == "" {
		return "processing was stopped"
	}
	return e.Reason
}

// RestoreFormatError is returned when a backup document cannot be parsed.
// No collection is touched when it is returned.
type RestoreFormatError struct {
	Message string
	Err     error
}

func (e *RestoreFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid backup: %s: %v", e.Message, e.Err)
	}
	return "invalid backup: " + e.Message
}

func (e *RestoreFormatError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsCancelled(err error) bool {
	var target *CancelledError
	return errors.As(err, &target)
}

// IsUserFacing reports whether err is handled at the point of action and must
// not reach generic error logging.
func IsUserFacing(err error) bool {
	var v *ValidationError
	var d *DuplicateNameError
	var p *ProtectedEntityError
	return errors.As(err, &v) || errors.As(err, &d) || errors.As(err, &p)
}
