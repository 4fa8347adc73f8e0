package pool

import (
	"math"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-memory/errors"
)

const (
	// alignment is the block granularity. Every block offset and size is a
	// multiple of this.
	alignment = 8

	// MinBufferSize is the smallest buffer Create accepts. Anything smaller
	// cannot hold a useful number of blocks.
	MinBufferSize = 64
)

// AllocInfo reports usage statistics for an Allocator.
type AllocInfo struct {
	TotalSize    uint32 // capacity of the managed buffer
	TotalFree    uint32 // bytes currently available for allocation
	HighmarkSize uint32 // peak bytes in use since creation
}

// span is a contiguous free region inside the buffer.
type span struct {
	off  uint32
	size uint32
}

// Allocator carves blocks out of a single caller-owned buffer.
type Allocator struct {
	mu        sync.Mutex
	buf       []byte
	free      []span            // sorted by offset, adjacent spans coalesced
	allocated map[uint32]uint32 // block offset -> aligned block size
	inUse     uint32
	highmark  uint32
	destroyed bool
}

// Create builds an Allocator over buf. The buffer must stay alive and
// unmodified (except through the allocator) for the allocator's lifetime.
func Create(buf []byte) (*Allocator, error) {
	if buf == nil {
		return nil, errors.InvalidConfig(errors.PhaseInit, "pool buffer is nil")
	}
	if len(buf) < MinBufferSize {
		return nil, errors.InvalidConfig(errors.PhaseInit,
			"pool buffer too small: %d bytes, need at least %d", len(buf), MinBufferSize)
	}
	if uint64(len(buf)) > math.MaxUint32 {
		return nil, errors.InvalidConfig(errors.PhaseInit,
			"pool buffer too large: %d bytes exceeds 4 GiB", len(buf))
	}

	usable := uint32(len(buf)) &^ (alignment - 1)
	return &Allocator{
		buf:       buf,
		free:      []span{{off: 0, size: usable}},
		allocated: make(map[uint32]uint32),
	}, nil
}

// Allocate returns a block of at least size bytes, or nil when no free span
// can satisfy the request.
func (a *Allocator) Allocate(size uint32) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocate(size)
}

func (a *Allocator) allocate(size uint32) []byte {
	if a.destroyed || size == 0 {
		return nil
	}
	need64 := (uint64(size) + alignment - 1) &^ (alignment - 1)
	if need64 > uint64(len(a.buf)) {
		return nil
	}
	need := uint32(need64)

	for i := range a.free {
		if a.free[i].size < need {
			continue
		}
		off := a.free[i].off
		a.free[i].off += need
		a.free[i].size -= need
		if a.free[i].size == 0 {
			a.free = append(a.free[:i], a.free[i+1:]...)
		}
		a.allocated[off] = need
		a.inUse += need
		if a.inUse > a.highmark {
			a.highmark = a.inUse
		}
		return a.buf[off : off+size : off+need]
	}
	return nil
}

// Reallocate resizes a previously allocated block, preserving its contents up
// to the smaller of the old and new sizes. The block may move. A nil block
// behaves like Allocate; a zero size frees the block and returns nil.
func (a *Allocator) Reallocate(b []byte, size uint32) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return nil
	}
	if b == nil {
		return a.allocate(size)
	}
	off, ok := a.offsetOf(b)
	if !ok {
		Logger().Warn("reallocate of unknown block", zap.Uint32("size", size))
		return nil
	}
	cur, live := a.allocated[off]
	if !live {
		Logger().Warn("reallocate of freed block", zap.Uint32("offset", off))
		return nil
	}
	if size == 0 {
		a.release(off, cur)
		return nil
	}

	need64 := (uint64(size) + alignment - 1) &^ (alignment - 1)
	if need64 > uint64(len(a.buf)) {
		return nil
	}
	need := uint32(need64)

	switch {
	case need == cur:
		return a.buf[off : off+size : off+need]
	case need < cur:
		// Shrink in place, returning the tail to the free list.
		a.allocated[off] = need
		a.inUse -= cur - need
		a.insertFree(span{off: off + need, size: cur - need})
		return a.buf[off : off+size : off+need]
	}

	// Grow in place when the span immediately after this block is free and
	// large enough.
	if i, ok := a.freeIndexAt(off + cur); ok && a.free[i].size >= need-cur {
		grow := need - cur
		a.free[i].off += grow
		a.free[i].size -= grow
		if a.free[i].size == 0 {
			a.free = append(a.free[:i], a.free[i+1:]...)
		}
		a.allocated[off] = need
		a.inUse += grow
		if a.inUse > a.highmark {
			a.highmark = a.inUse
		}
		return a.buf[off : off+size : off+need]
	}

	// Move: allocate a new block, copy, release the old one.
	nb := a.allocate(size)
	if nb == nil {
		return nil
	}
	copy(nb, a.buf[off:off+cur])
	a.release(off, cur)
	return nb
}

// Free returns a block to the free list. Blocks that were not allocated from
// this pool, or that were already freed, are diagnosed and ignored.
func (a *Allocator) Free(b []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed || b == nil {
		return
	}
	off, ok := a.offsetOf(b)
	if !ok {
		Logger().Warn("free of block outside pool buffer")
		return
	}
	size, live := a.allocated[off]
	if !live {
		Logger().Warn("free of unallocated block", zap.Uint32("offset", off))
		return
	}
	a.release(off, size)
}

// Destroy tears the allocator down and returns the number of blocks that were
// still allocated. The allocator is unusable afterwards.
func (a *Allocator) Destroy() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return 0
	}
	leaks := len(a.allocated)
	a.destroyed = true
	a.buf = nil
	a.free = nil
	a.allocated = nil
	a.inUse = 0
	return leaks
}

// Stats returns current usage statistics.
func (a *Allocator) Stats() AllocInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := uint32(len(a.buf))
	return AllocInfo{
		TotalSize:    total,
		TotalFree:    total - a.inUse,
		HighmarkSize: a.highmark,
	}
}

// Offset reports the byte offset of a live block inside the buffer.
func (a *Allocator) Offset(b []byte) (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed || b == nil {
		return 0, false
	}
	off, ok := a.offsetOf(b)
	if !ok {
		return 0, false
	}
	if _, live := a.allocated[off]; !live {
		return 0, false
	}
	return off, true
}

// BlockAt returns the live block starting at the given buffer offset. The
// returned slice spans the block's full aligned size.
func (a *Allocator) BlockAt(off uint32) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return nil, false
	}
	size, live := a.allocated[off]
	if !live {
		return nil, false
	}
	return a.buf[off : off+size : off+size], true
}

// release marks a block free and coalesces. Caller holds the mutex.
func (a *Allocator) release(off, size uint32) {
	delete(a.allocated, off)
	a.inUse -= size
	a.insertFree(span{off: off, size: size})
}

// insertFree adds a span to the sorted free list, merging with adjacent
// spans. Caller holds the mutex.
func (a *Allocator) insertFree(s span) {
	i := 0
	for i < len(a.free) && a.free[i].off < s.off {
		i++
	}

	// Merge with the previous span when contiguous.
	if i > 0 && a.free[i-1].off+a.free[i-1].size == s.off {
		a.free[i-1].size += s.size
		// The grown span may now touch the next one.
		if i < len(a.free) && a.free[i-1].off+a.free[i-1].size == a.free[i].off {
			a.free[i-1].size += a.free[i].size
			a.free = append(a.free[:i], a.free[i+1:]...)
		}
		return
	}

	// Merge with the next span when contiguous.
	if i < len(a.free) && s.off+s.size == a.free[i].off {
		a.free[i].off = s.off
		a.free[i].size += s.size
		return
	}

	a.free = append(a.free, span{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = s
}

// freeIndexAt finds the free span starting exactly at off. Caller holds the
// mutex.
func (a *Allocator) freeIndexAt(off uint32) (int, bool) {
	for i := range a.free {
		if a.free[i].off == off {
			return i, true
		}
		if a.free[i].off > off {
			break
		}
	}
	return 0, false
}

// offsetOf maps a block back to its offset via pointer arithmetic against the
// buffer base. Caller holds the mutex.
func (a *Allocator) offsetOf(b []byte) (uint32, bool) {
	if len(a.buf) == 0 || cap(b) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if p < base || p >= base+uintptr(len(a.buf)) {
		return 0, false
	}
	return uint32(p - base), true
}
