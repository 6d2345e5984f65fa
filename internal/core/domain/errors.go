package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found.
	// Resources outside the caller's scope are reported this way too.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong username/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSoleVersion indicates an attempt to delete the last version of a document
	ErrSoleVersion = errors.New("cannot delete the only version of a document")

	// ErrVersionLocked indicates another upload for the document held the version lock too long
	ErrVersionLocked = errors.New("version creation in progress")

	// ErrNoSearchableContent indicates a non-PDF document without extracted text
	ErrNoSearchableContent = errors.New("no searchable content")

	// ErrExtractionFailed indicates a lazy extraction produced no text
	ErrExtractionFailed = errors.New("text extraction failed")
)

// ValidationError reports a rejected field in a request.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Required builds the error for a missing required field
func Required(field string) *ValidationError {
	return NewValidationError(field, fmt.Sprintf("%s is required", field))
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
