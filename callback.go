package wasmmemory

import (
	"reflect"

	"github.com/wippyai/wasm-memory/errors"
)

// callbackAllocator adapts host-supplied functions to the Allocator
// interface, threading the opaque user data through every call.
type callbackAllocator struct {
	userData any
	malloc   AllocFunc
	realloc  ReallocFunc
	free     FreeFunc
}

var _ Allocator = callbackAllocator{}

func newCallbackAllocator(opts AllocatorOptions) (callbackAllocator, error) {
	if opts.Malloc == nil || opts.Free == nil {
		return callbackAllocator{}, errors.InvalidConfig(errors.PhaseInit,
			"allocator callbacks require both malloc and free functions")
	}
	// A host handing the same function to both slots would free through its
	// allocator (or vice versa) and corrupt its own heap.
	if reflect.ValueOf(opts.Malloc).Pointer() == reflect.ValueOf(opts.Free).Pointer() {
		return callbackAllocator{}, errors.InvalidConfig(errors.PhaseInit,
			"malloc and free callbacks must be distinct functions")
	}
	return callbackAllocator{
		userData: opts.UserData,
		malloc:   opts.Malloc,
		realloc:  opts.Realloc,
		free:     opts.Free,
	}, nil
}

func (c callbackAllocator) Allocate(size uint32) []byte {
	return c.malloc(c.userData, size)
}

func (c callbackAllocator) Reallocate(b []byte, size uint32) []byte {
	if c.realloc == nil {
		return nil
	}
	return c.realloc(c.userData, b, size)
}

func (c callbackAllocator) Free(b []byte) {
	c.free(c.userData, b)
}
