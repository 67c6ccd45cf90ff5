package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestStorageError_Unwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := fmt.Errorf("save session: %w", StorageError{Operation: "set", Err: base})

	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error")
	}
	if !IsStorage(err) {
		t.Fatalf("expected storage error")
	}
	if IsValidation(err) {
		t.Fatalf("storage error must not be validation")
	}
}

func TestIsExpectedUserBehavior(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation", ValidationError{Field: "relX", Reason: "out of range"}, true},
		{"wrapped not found", fmt.Errorf("get: %w", NotFoundError{Entity: "game", ID: "g1"}), true},
		{"authorization", AuthorizationError{UserID: "u1"}, true},
		{"storage", StorageError{Operation: "get"}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpectedUserBehavior(tt.err); got != tt.want {
				t.Errorf("IsExpectedUserBehavior() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	if got := (ValidationError{Field: "relX", Reason: "must be <= 1"}).Error(); got != "validation failed field=relX: must be <= 1" {
		t.Errorf("unexpected validation message: %s", got)
	}
	if got := (NotFoundError{Entity: "game"}).Error(); got != "game not found" {
		t.Errorf("unexpected not found message: %s", got)
	}
	if got := (AuthorizationError{UserID: "u1", Reason: "not creator"}).Error(); got != "access denied: not creator user=u1" {
		t.Errorf("unexpected authorization message: %s", got)
	}
}
