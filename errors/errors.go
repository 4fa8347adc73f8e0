package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the allocator lifecycle the error occurred
type Phase string

const (
	PhaseInit    Phase = "init"    // backend selection and configuration
	PhaseAlloc   Phase = "alloc"   // allocate/reallocate requests
	PhaseDestroy Phase = "destroy" // backend teardown
	PhaseRuntime Phase = "runtime" // guest memory operations
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidConfig  Kind = "invalid_config"
	KindNotInitialized Kind = "not_initialized"
	KindAllocation     Kind = "allocation"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidPointer Kind = "invalid_pointer"
	KindLeak           Kind = "leak"
	KindUnsupported    Kind = "unsupported"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// InvalidConfig creates a configuration error
func InvalidConfig(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidConfig,
		Detail: detail,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s: memory has not been initialized", what),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
	}
}

// LeakDetected creates a teardown leak error
func LeakDetected(blocks int) *Error {
	return &Error{
		Phase:  PhaseDestroy,
		Kind:   KindLeak,
		Detail: fmt.Sprintf("%d block(s) still allocated at teardown", blocks),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, size, limit uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("region [%d, %d) exceeds limit %d", offset, uint64(offset)+uint64(size), limit),
	}
}

// InvalidPointer creates an error for a pointer that does not name a live block
func InvalidPointer(phase Phase, ptr uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidPointer,
		Detail: fmt.Sprintf("pointer %d is not a live block", ptr),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
