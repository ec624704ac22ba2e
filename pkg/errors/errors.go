// Package errors provides custom error types for the dracve reconciliation
// engine. The taxonomy separates input failures (a mandatory source missing
// or unreadable, which abort a run with no partial results) from correction
// collaborator failures, which split into contract violations (the response
// was not the agreed structured object) and transport failures (the service
// itself was unreachable) so callers can message them differently.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the reconciliation engine.
var (
	// ErrSourceMissing indicates a mandatory data source was not provided.
	ErrSourceMissing = errors.New("mandatory source missing")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrContractViolation indicates the collaborator response did not
	// match the agreed structure.
	ErrContractViolation = errors.New("collaborator contract violation")

	// ErrCollaboratorUnavailable indicates the correction service could
	// not be reached or failed while producing a response.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrAPIKeyRequired indicates that an API key is required but not provided.
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrNoCorrector indicates no correction collaborator is configured.
	ErrNoCorrector = errors.New("no corrector configured")

	// ErrNoResult indicates no reconciliation run has completed yet.
	ErrNoResult = errors.New("no reconciliation result")
)

// InputError represents an operation-aborting failure to ingest a source:
// a mandatory source missing, or file content unreadable.
type InputError struct {
	Source  string // which source export failed (legacy, spreadsheet, ...)
	Message string
	Err     error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("input error for %s source: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("input error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *InputError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInputError creates a new InputError.
func NewInputError(source, message string, err error) *InputError {
	return &InputError{Source: source, Message: message, Err: err}
}

// ContractError represents a collaborator response that could not be
// interpreted as the expected structured object. Raw carries the offending
// payload for diagnostics.
type ContractError struct {
	Message string
	Raw     string
	Err     error
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("collaborator contract violation: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ContractError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ContractError) Is(target error) bool {
	return target == ErrContractViolation
}

// NewContractError creates a new ContractError.
func NewContractError(message, raw string, err error) *ContractError {
	return &ContractError{Message: message, Raw: raw, Err: err}
}

// TransportError represents a network or service failure while reaching the
// correction collaborator, distinct from a malformed response.
type TransportError struct {
	Service string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("transport error calling %s: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *TransportError) Is(target error) bool {
	return target == ErrCollaboratorUnavailable
}

// NewTransportError creates a new TransportError.
func NewTransportError(service, message string, err error) *TransportError {
	return &TransportError{Service: service, Message: message, Err: err}
}

// ValidationError represents a validation failure in configuration or
// caller-supplied options.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AuthenticationError represents a missing or rejected credential for the
// correction collaborator.
type AuthenticationError struct {
	Service string
	Method  string // "api_key", "adc", ...
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("authentication error for %s (%s): %s", e.Service, e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAPIKeyRequired
}

// IOError represents an error during I/O operations.
type IOError struct {
	Operation string // "read", "write", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps an error as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// Helper functions for error checking.

// IsInputError checks if an error aborts ingestion (invalid or missing input).
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrSourceMissing)
}

// IsContractViolation checks if an error is a collaborator contract violation.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}

// IsCollaboratorUnavailable checks if an error is a collaborator transport failure.
func IsCollaboratorUnavailable(err error) bool {
	return errors.Is(err, ErrCollaboratorUnavailable)
}
