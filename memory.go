package wasmmemory

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-memory/errors"
	"github.com/wippyai/wasm-memory/pool"
)

// PoolSizeUnavailable is the PoolSize result outside pool mode: not
// applicable / unbounded.
const PoolSizeUnavailable = math.MaxUint32

// Manager is the allocation facade. A zero Manager (or NewManager result) is
// uninitialized; Init selects the backend and Destroy returns it to the
// uninitialized state.
//
// Manager performs no locking of its own: Init must complete before any
// concurrent allocation call, and Destroy must happen after all of them.
type Manager struct {
	mode      Mode
	pool      *pool.Allocator
	poolSize  uint32
	callbacks callbackAllocator
	sys       systemAllocator
}

var _ Allocator = (*Manager)(nil)

// NewManager returns an uninitialized Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Mode reports the active backend.
func (m *Manager) Mode() Mode {
	return m.mode
}

// Init selects the allocation backend. On failure the Manager is left
// unchanged. Calling Init on an already-initialized Manager is not guarded:
// the previous backend is abandoned without teardown, so callers must
// Destroy first.
func (m *Manager) Init(mode Mode, opts Options) error {
	switch mode {
	case ModePool:
		p, err := pool.Create(opts.Pool.HeapBuf)
		if err != nil {
			Logger().Error("init memory with pool failed",
				zap.Int("size", len(opts.Pool.HeapBuf)),
				zap.Error(err))
			return err
		}
		m.mode = ModePool
		m.pool = p
		m.poolSize = uint32(len(opts.Pool.HeapBuf))
		m.callbacks = callbackAllocator{}
		return nil

	case ModeAllocator:
		cb, err := newCallbackAllocator(opts.Allocator)
		if err != nil {
			Logger().Error("init memory with allocator failed", zap.Error(err))
			return err
		}
		m.mode = ModeAllocator
		m.callbacks = cb
		m.pool = nil
		m.poolSize = 0
		return nil

	case ModeSystem:
		m.mode = ModeSystem
		m.pool = nil
		m.poolSize = 0
		m.callbacks = callbackAllocator{}
		return nil

	default:
		return errors.InvalidConfig(errors.PhaseInit, "unrecognized memory mode %d", int(mode))
	}
}

// Destroy tears down the active backend and resets the Manager to the
// uninitialized state. In pool mode a nonzero count of still-allocated blocks
// is reported as a leak error; under the memverify build tag it is fatal.
func (m *Manager) Destroy() error {
	var err error
	if m.mode == ModePool {
		if leaks := m.pool.Destroy(); leaks != 0 {
			if leakVerify {
				Logger().Fatal("memory leak detected at teardown",
					zap.Int("blocks", leaks))
			}
			Logger().Warn("memory leak detected at teardown",
				zap.Int("blocks", leaks))
			err = errors.LeakDetected(leaks)
		}
	}
	m.mode = ModeUninitialized
	m.pool = nil
	m.poolSize = 0
	m.callbacks = callbackAllocator{}
	return err
}

// PoolSize returns the configured pool capacity in pool mode, and
// PoolSizeUnavailable otherwise.
func (m *Manager) PoolSize() uint32 {
	if m.mode == ModePool {
		return m.poolSize
	}
	return PoolSizeUnavailable
}

// Allocate returns a block of at least size bytes, or nil on failure. A zero
// size is upgraded to one byte: a genuinely empty request is ambiguous across
// backends and must never reach one.
func (m *Manager) Allocate(size uint32) []byte {
	if size == 0 {
		Logger().Warn("allocate with size zero")
		size = 1
	}

	switch m.mode {
	case ModePool:
		return m.pool.Allocate(size)
	case ModeAllocator:
		return m.callbacks.Allocate(size)
	case ModeSystem:
		return m.sys.Allocate(size)
	default:
		Logger().Warn("allocate failed: memory has not been initialized",
			zap.Uint32("size", size))
		return nil
	}
}

// Reallocate resizes a block through the active backend. Nil blocks and zero
// sizes are forwarded as-is; the backend's contract governs the result. In
// allocator mode without a configured realloc callback the call fails with a
// nil result.
func (m *Manager) Reallocate(b []byte, size uint32) []byte {
	switch m.mode {
	case ModePool:
		return m.pool.Reallocate(b, size)
	case ModeAllocator:
		return m.callbacks.Reallocate(b, size)
	case ModeSystem:
		return m.sys.Reallocate(b, size)
	default:
		Logger().Warn("reallocate failed: memory has not been initialized",
			zap.Uint32("size", size))
		return nil
	}
}

// Free releases a block through the active backend. Freeing a nil block is a
// diagnosed no-op.
func (m *Manager) Free(b []byte) {
	if b == nil {
		Logger().Warn("free with nil block")
		return
	}

	switch m.mode {
	case ModePool:
		m.pool.Free(b)
	case ModeAllocator:
		m.callbacks.Free(b)
	case ModeSystem:
		m.sys.Free(b)
	default:
		Logger().Warn("free failed: memory has not been initialized")
	}
}

// AllocInfo returns backend usage statistics. Only the pool backend has a
// statistics contract; the second result is false in every other mode.
func (m *Manager) AllocInfo() (pool.AllocInfo, bool) {
	if m.mode == ModePool {
		return m.pool.Stats(), true
	}
	return pool.AllocInfo{}, false
}
