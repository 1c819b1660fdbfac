package model

import (
	"errors"
	"fmt"
)

// The error kinds every core operation can fail with. Transport layers map
// them to distinct response codes; everything else is an internal error.

// ValidationError indicates missing or malformed request input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a referenced entity or account is absent.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError indicates a unique-key collision, e.g. re-registering an
// existing type name or (account, type) pair.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflictf builds a ConflictError from a format string.
func Conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// DataIntegrityError indicates corrupt persisted data, e.g. an override blob
// that no longer decodes. It names the binding so the bad row can be found,
// and is never downgraded to defaults.
type DataIntegrityError struct {
	BindingID string
	Cause     error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("corrupt override blob on binding %s: %v", e.BindingID, e.Cause)
}

func (e *DataIntegrityError) Unwrap() error { return e.Cause }

// UpstreamError wraps a remote collaborator failure unrelated to existence
// (unavailable, timeout). Propagated verbatim to the caller.
type UpstreamError struct {
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure: %v", e.Cause)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
