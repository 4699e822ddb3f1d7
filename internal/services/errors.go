package services

import (
	"errors"
	"fmt"
)

// Error taxonomy. The HTTP layer maps these to status codes in one table.
var (
	// ErrInvalidInput marks client mistakes: empty text, unsupported language, unknown voice.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEngineUnavailable marks an engine that cannot run on this host (no voices, missing binary).
	ErrEngineUnavailable = errors.New("engine unavailable")
)

// InputError names the request field that was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidField(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// UnavailableError carries the operator remediation for an engine that cannot start.
type UnavailableError struct {
	Engine      string
	Remediation string
	Err         error
}

func (e *UnavailableError) Error() string {
	msg := e.Engine + " is unavailable"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Remediation != "" {
		msg += " (" + e.Remediation + ")"
	}
	return msg
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrEngineUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
