package errors

import (
	stderrors "errors"
	"testing"
)

func TestInputErrorIs(t *testing.T) {
	err := NewInputError("Legacy", "source not provided", ErrSourceMissing)

	if !IsInputError(err) {
		t.Error("InputError should satisfy IsInputError")
	}
	if !stderrors.Is(err, ErrSourceMissing) {
		t.Error("InputError wrapping ErrSourceMissing should match it")
	}
	if IsContractViolation(err) {
		t.Error("InputError should not be a contract violation")
	}
}

func TestContractErrorIs(t *testing.T) {
	err := NewContractError("bad response", `{"oops"`, nil)

	if !IsContractViolation(err) {
		t.Error("ContractError should satisfy IsContractViolation")
	}
	if IsCollaboratorUnavailable(err) {
		t.Error("ContractError should not be a transport failure")
	}
}

func TestTransportErrorIs(t *testing.T) {
	inner := New("connection refused")
	err := NewTransportError("gemini", "service down", inner)

	if !IsCollaboratorUnavailable(err) {
		t.Error("TransportError should satisfy IsCollaboratorUnavailable")
	}
	if !stderrors.Is(err, inner) {
		t.Error("TransportError should unwrap to its cause")
	}
	if IsContractViolation(err) {
		t.Error("TransportError should not be a contract violation")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "delimiter", Message: "cannot be zero"}
	if !stderrors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	want := "validation failed for field delimiter: cannot be zero"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
