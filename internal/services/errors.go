package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service errors so handlers can map them to HTTP
// status codes without string matching.
type ErrorKind int

const (
	ErrKindInternal ErrorKind = iota
	ErrKindValidation
	ErrKindNotFound
	ErrKindConflict
	ErrKindUnavailable
)

// ServiceError is the error type returned across the service boundary.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string, err error) *ServiceError {
	return &ServiceError{Kind: ErrKindValidation, Message: message, Err: err}
}

func NewNotFoundError(resource string) *ServiceError {
	return &ServiceError{Kind: ErrKindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{Kind: ErrKindConflict, Message: message}
}

func NewUnavailableError(message string, err error) *ServiceError {
	return &ServiceError{Kind: ErrKindUnavailable, Message: message, Err: err}
}

func NewInternalError(message string, err error) *ServiceError {
	return &ServiceError{Kind: ErrKindInternal, Message: message, Err: err}
}

// KindOf returns the error kind, defaulting to internal for plain errors.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrKindInternal
}

func IsNotFound(err error) bool   { return KindOf(err) == ErrKindNotFound }
func IsValidation(err error) bool { return KindOf(err) == ErrKindValidation }
