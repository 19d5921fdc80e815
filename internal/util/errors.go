package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("permission denied")
	ErrNotFound         = errors.New("resource not found")
	ErrNotPublic        = fmt.Errorf("%w: quiz is not public", ErrNotFound)
	ErrConflict         = errors.New("conflict")
	ErrUpstream         = errors.New("upstream provider error")
	ErrGenerationFailed = fmt.Errorf("%w: quiz generation failed", ErrUpstream)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrAlreadyFinalized   = fmt.Errorf("%w: attempt already finalized", ErrConflict)
	ErrNotFinalized       = fmt.Errorf("%w: attempt not finalized", ErrConflict)
)

// ValidationError 携带逐字段的校验失败原因
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var (
	ErrEmailRegistered = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrUsernameTaken   = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrSelfShare       = NewValidationError("recipient", "cannot share a quiz with yourself")
)
