package wasmmemory

// Mode selects the allocation backend. Exactly one mode is active after a
// successful Init.
type Mode int

const (
	// ModeUninitialized is the state before Init and after Destroy.
	ModeUninitialized Mode = iota
	// ModePool carves allocations from a caller-supplied buffer.
	ModePool
	// ModeAllocator delegates allocations to host-supplied callbacks.
	ModeAllocator
	// ModeSystem satisfies allocations from the Go heap.
	ModeSystem
)

func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "uninitialized"
	case ModePool:
		return "pool"
	case ModeAllocator:
		return "allocator"
	case ModeSystem:
		return "system"
	}
	return "unknown"
}

// PoolOptions configures ModePool.
type PoolOptions struct {
	// HeapBuf is the caller-owned buffer the pool allocator manages. It must
	// stay alive for the lifetime of the mode and must be at least
	// pool.MinBufferSize bytes.
	HeapBuf []byte
}

// AllocatorOptions configures ModeAllocator.
type AllocatorOptions struct {
	// UserData is passed verbatim as the first argument of every callback.
	UserData any
	// Malloc and Free are mandatory and must be distinct function values.
	Malloc AllocFunc
	Free   FreeFunc
	// Realloc is optional; without it Reallocate always fails.
	Realloc ReallocFunc
}

// Options is the per-mode configuration union consulted by Init. Only the
// field matching the selected mode is read; ModeSystem reads nothing.
type Options struct {
	Pool      PoolOptions
	Allocator AllocatorOptions
}
