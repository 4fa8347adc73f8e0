// Package wasmmemory provides the memory allocation facade for an embedded
// WASM runtime.
//
// The runtime funnels every host-side heap request through a single Manager,
// and the embedder picks exactly one backend at initialization time:
//
//	ModePool       allocations are carved from a caller-supplied buffer by
//	               the pool allocator (see the pool package)
//	ModeAllocator  allocations are delegated to host-supplied callback
//	               functions, with optional opaque user data
//	ModeSystem     allocations come from the Go heap
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmmemory/      Root package with the Manager facade and Allocator interface
//	├── pool/        Fixed-capacity allocator over a caller-supplied buffer
//	├── guestmem/    Runtime-managed app heap inside a guest's linear memory
//	├── errors/      Structured error types for diagnostics
//	└── cmd/memview/ CLI and TUI for inspecting a live heap
//
// # Quick Start
//
// Initialize once, before any allocation:
//
//	mgr := wasmmemory.NewManager()
//	heap := make([]byte, 512*1024)
//	if err := mgr.Init(wasmmemory.ModePool, wasmmemory.Options{
//	    Pool: wasmmemory.PoolOptions{HeapBuf: heap},
//	}); err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Destroy()
//
//	buf := mgr.Allocate(128)
//	buf = mgr.Reallocate(buf, 256)
//	mgr.Free(buf)
//
// # Lifecycle
//
// A Manager starts uninitialized: Allocate returns nil, Free is a no-op, and
// PoolSize reports the "not applicable" sentinel. Init moves it into exactly
// one active mode; Destroy tears the backend down and returns it to the
// uninitialized state, after which it may be initialized again. Calling Init
// on an already-initialized Manager is not guarded: it overwrites the state
// without releasing the previous backend, so callers must Destroy first.
//
// # Concurrency
//
// Init and Destroy must be serialized by the caller: Init happens-before any
// concurrent Allocate/Reallocate/Free, and Destroy happens-after all of them.
// Within an active mode, thread safety of the allocation calls is the
// backend's: the pool backend is internally locked, the Go heap is safe, and
// callback-mode safety is the host's responsibility.
//
// # Failure Model
//
// Allocation failure is always a nil block, never an error or panic.
// Misuse before initialization is diagnosed at warning severity and returns
// nil (or no-ops). The single fatal path is leak detection at Destroy time
// under the memverify build tag, which terminates the process by design.
package wasmmemory
