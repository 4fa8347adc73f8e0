// Package guestmem manages a runtime-owned allocation region inside a guest
// module's linear memory.
//
// Embedders reserve a range of a wazero api.Memory for host-driven
// allocations (string passing, scratch buffers, return areas) and let a Heap
// carve blocks out of it. Pointers handed out by a Heap are absolute offsets
// into the guest's linear memory, so they can be passed to guest functions
// directly.
//
// The heap captures the region's backing bytes at creation time. Growing the
// guest memory can remap its backing store, so the managed region must be
// reserved below the memory's initial size and the guest must not be allowed
// to grow memory while the heap is live.
package guestmem
