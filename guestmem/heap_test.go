package guestmem

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-memory/errors"
)

// minimalMemoryModule is a wasm module that does nothing but export a 2-page
// linear memory:
//
//	(module (memory (export "memory") 2))
var minimalMemoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version 1
	0x05, 0x03, 0x01, 0x00, 0x02, // memory section: 1 memory, min 2 pages
	0x07, 0x0a, 0x01, // export section: 1 export
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', // name "memory"
	0x02, 0x00, // kind memory, index 0
}

func guestMemory(t *testing.T) api.Memory {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, minimalMemoryModule)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	mem := mod.Memory()
	if mem == nil {
		t.Fatal("module has no exported memory")
	}
	return mem
}

func TestNew(t *testing.T) {
	mem := guestMemory(t)

	tests := []struct {
		name    string
		base    uint32
		size    uint32
		wantErr bool
	}{
		{"valid region", 1024, 8192, false},
		{"whole memory", 0, mem.Size(), false},
		{"region past end", mem.Size() - 100, 4096, true},
		{"region too small", 0, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(mem, tt.base, tt.size)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if h.Base() != tt.base || h.Size() != tt.size {
				t.Errorf("region = [%d, +%d), want [%d, +%d)", h.Base(), h.Size(), tt.base, tt.size)
			}
		})
	}
}

func TestNew_NilMemory(t *testing.T) {
	if _, err := New(nil, 0, 4096); err == nil {
		t.Fatal("expected error for nil memory")
	}
}

func TestHeap_AllocWritesVisibleToGuestMemory(t *testing.T) {
	mem := guestMemory(t)
	h, err := New(mem, 4096, 16384)
	if err != nil {
		t.Fatal(err)
	}

	ptr, err := h.Alloc(100)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if ptr < 4096 || ptr >= 4096+16384 {
		t.Fatalf("pointer %d outside managed region", ptr)
	}

	// Writes through the memory API land in the heap's region and survive a
	// realloc.
	payload := bytes.Repeat([]byte{0xC3}, 100)
	if !mem.Write(ptr, payload) {
		t.Fatal("guest memory write failed")
	}

	nptr, err := h.Realloc(ptr, 4000)
	if err != nil {
		t.Fatalf("Realloc: %v", err)
	}
	got, ok := mem.Read(nptr, 100)
	if !ok {
		t.Fatal("guest memory read failed")
	}
	if !bytes.Equal(got, payload) {
		t.Error("contents not preserved across Realloc")
	}

	if err := h.Free(nptr); err != nil {
		t.Errorf("Free: %v", err)
	}
}

func TestHeap_PointerValidation(t *testing.T) {
	mem := guestMemory(t)
	h, err := New(mem, 1024, 8192)
	if err != nil {
		t.Fatal(err)
	}

	if err := h.Free(64); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds}) {
		t.Errorf("free below region: %v", err)
	}
	if _, err := h.Realloc(1024+8192+8, 10); err == nil {
		t.Error("realloc past region should fail")
	}

	ptr, err := h.Alloc(32)
	if err != nil {
		t.Fatal(err)
	}
	// Interior pointer is not a block start.
	if err := h.Free(ptr + 4); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindInvalidPointer}) {
		t.Errorf("interior pointer free: %v", err)
	}
	if err := h.Free(ptr); err != nil {
		t.Errorf("Free: %v", err)
	}
	// Stale pointer after free.
	if err := h.Free(ptr); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindInvalidPointer}) {
		t.Errorf("stale pointer free: %v", err)
	}
}

func TestHeap_Exhaustion(t *testing.T) {
	mem := guestMemory(t)
	h, err := New(mem, 0, 256)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.Alloc(10000); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindAllocation}) {
		t.Errorf("oversized alloc: %v", err)
	}
}

func TestHeap_StatsAndDestroy(t *testing.T) {
	mem := guestMemory(t)
	h, err := New(mem, 0, 4096)
	if err != nil {
		t.Fatal(err)
	}

	ptr, err := h.Alloc(128)
	if err != nil {
		t.Fatal(err)
	}
	if ptr >= 4096 {
		t.Errorf("pointer %d outside managed region", ptr)
	}
	info := h.Stats()
	if info.TotalSize != 4096 || info.TotalFree >= 4096 {
		t.Errorf("implausible stats: %+v", info)
	}

	if leaks := h.Destroy(); leaks != 1 {
		t.Errorf("Destroy() = %d leaks, want 1", leaks)
	}
}
