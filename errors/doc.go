// Package errors provides structured error types for the wasm-memory library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries a human-readable detail message and an
// optional cause chain.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.InvalidConfig(errors.PhaseInit, "pool buffer is nil")
//	err := errors.AllocationFailed(errors.PhaseAlloc, 4096)
//	err := errors.LeakDetected(3)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
