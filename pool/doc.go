// Package pool implements a fixed-capacity allocator over a caller-supplied
// buffer.
//
// An Allocator carves blocks out of a single []byte with a first-fit strategy.
// Freed blocks are returned to a sorted free list and coalesced with adjacent
// free spans, so a full allocate/free cycle restores the original capacity.
// The allocator never grows: when no free span can satisfy a request,
// Allocate returns nil.
//
// Blocks are handed out as sub-slices of the managed buffer. Offset and
// BlockAt translate between blocks and their byte offsets inside the buffer,
// which is what guest-memory integrations use to hand out stable pointers.
//
// All methods are safe for concurrent use.
package pool
