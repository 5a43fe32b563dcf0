package errors

import (
	"errors"
	"fmt"
	"testing"
)

// =============================================================================
// Test Error Types and Constructors
// =============================================================================

func TestNotFoundf(t *testing.T) {
	err := NotFoundf("category %q not found", "breakfast")

	if err.Kind != ErrNotFound {
		t.Errorf("expected Kind to be ErrNotFound (%d), got %d", ErrNotFound, err.Kind)
	}
	if err.Message != `category "breakfast" not found` {
		t.Errorf("unexpected message '%s'", err.Message)
	}
	if err.Err != nil {
		t.Errorf("expected Err to be nil, got %v", err.Err)
	}
}

func TestValidation(t *testing.T) {
	err := Validation("dish name is required")

	if err.Kind != ErrValidation {
		t.Errorf("expected Kind to be ErrValidation (%d), got %d", ErrValidation, err.Kind)
	}
	if err.Error() != "dish name is required" {
		t.Errorf("unexpected message '%s'", err.Error())
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"NotFound", NotFound("x"), ErrNotFound},
		{"Validationf", Validationf("%s already listed", "Kunafa"), ErrValidation},
		{"InvalidInputf", InvalidInputf("index %d out of range", 7), ErrInvalidInput},
		{"Internal", Internal(errors.New("boom")), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.err.Kind)
			}
		})
	}
}

// =============================================================================
// Test Wrapping
// =============================================================================

func TestWrap(t *testing.T) {
	base := errors.New("disk full")
	err := Wrap(base, ErrInternal, "failed to save state")

	if err.Error() != "failed to save state: disk full" {
		t.Errorf("unexpected message '%s'", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("add dish: %w", Validation("duplicate"))

	if KindOf(wrapped) != ErrValidation {
		t.Errorf("expected validation kind through fmt wrapping, got %v", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != ErrInternal {
		t.Error("expected plain errors to be internal")
	}
	if !Is(wrapped, ErrValidation) {
		t.Error("expected Is to match")
	}
	if Is(nil, ErrInternal) {
		t.Error("nil should not match any kind")
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		ErrInternal:     "internal",
		ErrNotFound:     "not found",
		ErrValidation:   "validation",
		ErrInvalidInput: "invalid input",
	}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), k.String(), want)
		}
	}
}
