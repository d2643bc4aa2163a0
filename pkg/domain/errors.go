package domain

import "errors"

// Common domain errors. Every error surfaced by services wraps exactly one of
// these kinds so transports can classify it with errors.Is.
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a caller could not be authenticated
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrStateConflict is returned when an entity is not in a state that allows the operation
	ErrStateConflict = errors.New("state conflict")
	// ErrInvalidReference is returned when a write points at a row that does not exist
	ErrInvalidReference = errors.New("invalid reference")
	// ErrConcurrentModification is returned when the store aborted the operation
	// because of a concurrent writer. Callers may retry.
	ErrConcurrentModification = errors.New("concurrent modification, retry the request")
)

// Error is a domain error with a caller-facing message. Kind is one of the
// sentinel errors above.
type Error struct {
	kind  error
	msg   string
	field string
}

// NewError creates a domain error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// NewFieldError creates a validation error bound to a request field.
func NewFieldError(field, msg string) *Error {
	return &Error{kind: ErrValidation, msg: msg, field: field}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Kind returns the sentinel kind.
func (e *Error) Kind() error { return e.kind }

// Field returns the offending field name, if any.
func (e *Error) Field() string { return e.field }

// Validation is a shorthand for NewError(ErrValidation, msg).
func Validation(msg string) *Error {
	return NewError(ErrValidation, msg)
}
