package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"clamsutils/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrMalformedInput, "loader", "decode", "invalid json", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrMalformedInput) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"loader", "decode", "invalid json"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestSkippableAndOutcome(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skippable bool
		outcome   string
	}{
		{"nil", nil, false, "cleaned"},
		{"missing", services.Wrap(services.ErrMissingData, "converter", "guid", "absent", nil), true, "missing"},
		{"malformed", fmt.Errorf("read: %w", services.ErrMalformedInput), true, "malformed"},
		{"other", errors.New("disk full"), false, "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Skippable(tt.err); got != tt.skippable {
				t.Fatalf("Skippable() = %v, want %v", got, tt.skippable)
			}
			if got := services.Outcome(tt.err); got != tt.outcome {
				t.Fatalf("Outcome() = %q, want %q", got, tt.outcome)
			}
		})
	}
}
