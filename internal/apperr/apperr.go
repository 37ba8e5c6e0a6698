// Package apperr defines the error kinds surfaced to views and CLI commands.
//
// None of these are fatal: callers report them and keep their previous state.
package apperr

import (
	"errors"
	"fmt"
)

// Kind names used in machine-readable output.
const (
	KindValidation = "validation"
	KindNetwork    = "network"
	KindAPI        = "api"
	KindNotFound   = "not_found"
	KindAuth       = "auth"
	KindInternal   = "internal"
)

// ValidationError is produced locally, before any request is built.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation returns a ValidationError for field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NetworkError means the transport failed before a response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError means the server answered but signalled failure, either through the
// HTTP status or through a falsy status flag in the body.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NotFoundError means the requested id was absent from the result set.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NotFound returns a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// AuthError is returned by login when the credentials are refused or the
// response cannot be turned into a session.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// KindOf classifies err for output envelopes.
func KindOf(err error) string {
	var (
		ve *ValidationError
		ne *NetworkError
		ae *APIError
		nf *NotFoundError
		au *AuthError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &au):
		return KindAuth
	case errors.As(err, &nf):
		return KindNotFound
	case errors.As(err, &ae):
		return KindAPI
	case errors.As(err, &ne):
		return KindNetwork
	default:
		return KindInternal
	}
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
