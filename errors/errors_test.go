package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseInit,
				Kind:   KindInvalidConfig,
				Detail: "pool buffer is nil",
			},
			contains: []string{"[init]", "invalid_config", "pool buffer is nil"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAlloc,
				Kind:  KindAllocation,
			},
			contains: []string{"[alloc]", "allocation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDestroy,
				Kind:   KindLeak,
				Detail: "teardown failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[destroy]", "leak", "teardown failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseInit, KindInvalidConfig, cause, "create pool")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not match wrapped cause")
	}
}

func TestError_Is(t *testing.T) {
	err := AllocationFailed(PhaseAlloc, 4096)

	if !errors.Is(err, &Error{Phase: PhaseAlloc, Kind: KindAllocation}) {
		t.Error("expected match on same phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseInit, Kind: KindAllocation}) {
		t.Error("unexpected match on different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseAlloc, Kind: KindLeak}) {
		t.Error("unexpected match on different kind")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		phase    Phase
		kind     Kind
		contains string
	}{
		{"invalid config", InvalidConfig(PhaseInit, "mode %d not recognized", 42), PhaseInit, KindInvalidConfig, "mode 42 not recognized"},
		{"not initialized", NotInitialized(PhaseAlloc, "allocate"), PhaseAlloc, KindNotInitialized, "allocate"},
		{"allocation failed", AllocationFailed(PhaseAlloc, 128), PhaseAlloc, KindAllocation, "128 bytes"},
		{"leak detected", LeakDetected(3), PhaseDestroy, KindLeak, "3 block(s)"},
		{"out of bounds", OutOfBounds(PhaseRuntime, 100, 50, 120), PhaseRuntime, KindOutOfBounds, "[100, 150)"},
		{"unsupported", Unsupported(PhaseAlloc, "reallocate without callback"), PhaseAlloc, KindUnsupported, "reallocate without callback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("phase = %q, want %q", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("message %q does not contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}
