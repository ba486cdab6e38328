package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestReason(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", ErrDuplicateAnswer)
	if got := Reason(wrapped); got != "duplicate_answer" {
		t.Fatalf("expected duplicate_answer, got %q", got)
	}
	if got := Reason(ErrRoomNotFound); got != "not_found" {
		t.Fatalf("expected not_found, got %q", got)
	}
	if got := Reason(errors.New("boom")); got != "internal" {
		t.Fatalf("expected internal, got %q", got)
	}
	if Reason(nil) != "" {
		t.Fatalf("nil error has no reason")
	}
}

func TestIsBenign(t *testing.T) {
	if !IsBenign(fmt.Errorf("advance: %w", ErrAlreadyAdvanced)) {
		t.Fatalf("already advanced is benign")
	}
	if IsBenign(ErrInvalidPhase) {
		t.Fatalf("invalid phase is a real failure")
	}
}
