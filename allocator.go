package wasmmemory

// Allocator is the capability shared by every allocation backend.
//
// Blocks are plain byte slices: a nil result from Allocate or Reallocate
// means the request could not be satisfied. Implementations never panic on
// exhaustion.
type Allocator interface {
	// Allocate returns a block of at least size bytes, or nil on failure.
	Allocate(size uint32) []byte

	// Reallocate resizes a block, preserving contents up to the smaller of
	// the old and new sizes. The block may move. Returns nil on failure.
	Reallocate(b []byte, size uint32) []byte

	// Free releases a block. Releasing a block twice, or a block from a
	// different allocator, is a diagnosed no-op.
	Free(b []byte)
}

// AllocFunc is a host-supplied allocation callback. userData is the opaque
// value fixed at Init time.
type AllocFunc func(userData any, size uint32) []byte

// ReallocFunc is a host-supplied reallocation callback.
type ReallocFunc func(userData any, b []byte, size uint32) []byte

// FreeFunc is a host-supplied deallocation callback.
type FreeFunc func(userData any, b []byte)
