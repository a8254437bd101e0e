package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Transport errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("server unavailable")

	// Validation errors.
	ErrorValidation    = errors.New("validation error")
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidCSRF  = errors.New("csrf token mismatch")

	// ErrTooManyAttachments is reported when an authoring action already holds
	// the maximum number of attachments.
	ErrTooManyAttachments = errors.New("too many attachments")
)
