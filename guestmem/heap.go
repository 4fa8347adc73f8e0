package guestmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-memory/errors"
	"github.com/wippyai/wasm-memory/pool"
)

// Heap allocates blocks inside a fixed region of a guest's linear memory.
// Pointers are absolute offsets into that memory.
type Heap struct {
	mem  api.Memory
	pool *pool.Allocator
	base uint32
	size uint32
}

// New creates a Heap over the region [base, base+size) of mem. The region
// must lie within the memory's current size and be large enough for the pool
// allocator (pool.MinBufferSize).
func New(mem api.Memory, base, size uint32) (*Heap, error) {
	if mem == nil {
		return nil, errors.InvalidConfig(errors.PhaseInit, "guest memory is nil")
	}
	if uint64(base)+uint64(size) > uint64(mem.Size()) {
		return nil, errors.OutOfBounds(errors.PhaseInit, base, size, mem.Size())
	}
	region, ok := mem.Read(base, size)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseInit, base, size, mem.Size())
	}
	p, err := pool.Create(region)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInit, errors.KindInvalidConfig, err, "create guest heap")
	}
	return &Heap{mem: mem, pool: p, base: base, size: size}, nil
}

// Base returns the guest offset of the managed region.
func (h *Heap) Base() uint32 { return h.base }

// Size returns the managed region's size in bytes.
func (h *Heap) Size() uint32 { return h.size }

// Alloc reserves size bytes and returns the block's guest pointer.
func (h *Heap) Alloc(size uint32) (uint32, error) {
	b := h.pool.Allocate(size)
	if b == nil {
		return 0, errors.AllocationFailed(errors.PhaseRuntime, size)
	}
	off, ok := h.pool.Offset(b)
	if !ok {
		// Allocate just handed the block out; Offset cannot miss it.
		h.pool.Free(b)
		return 0, errors.AllocationFailed(errors.PhaseRuntime, size)
	}
	return h.base + off, nil
}

// Realloc resizes the block at ptr, preserving contents. The block may move;
// the returned pointer supersedes ptr.
func (h *Heap) Realloc(ptr uint32, size uint32) (uint32, error) {
	b, err := h.blockFor(ptr)
	if err != nil {
		return 0, err
	}
	nb := h.pool.Reallocate(b, size)
	if nb == nil {
		return 0, errors.AllocationFailed(errors.PhaseRuntime, size)
	}
	off, ok := h.pool.Offset(nb)
	if !ok {
		return 0, errors.AllocationFailed(errors.PhaseRuntime, size)
	}
	return h.base + off, nil
}

// Free releases the block at ptr.
func (h *Heap) Free(ptr uint32) error {
	b, err := h.blockFor(ptr)
	if err != nil {
		return err
	}
	h.pool.Free(b)
	return nil
}

// Stats returns the heap's usage statistics.
func (h *Heap) Stats() pool.AllocInfo {
	return h.pool.Stats()
}

// Destroy tears the heap down and returns the number of blocks that were
// still allocated.
func (h *Heap) Destroy() int {
	return h.pool.Destroy()
}

func (h *Heap) blockFor(ptr uint32) ([]byte, error) {
	if ptr < h.base || ptr >= h.base+h.size {
		return nil, errors.OutOfBounds(errors.PhaseRuntime, ptr, 1, h.base+h.size)
	}
	b, ok := h.pool.BlockAt(ptr - h.base)
	if !ok {
		return nil, errors.InvalidPointer(errors.PhaseRuntime, ptr)
	}
	return b, nil
}
