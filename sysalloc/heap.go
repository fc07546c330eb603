package sysalloc

import (
	"sync"
	"unsafe"
)

// Heap allocates blocks from the Go heap and keeps them reachable until Free.
type Heap struct {
	mu    sync.Mutex
	live  map[unsafe.Pointer][]byte
	inUse uintptr

	// Limit caps the bytes in use. Requests that would exceed it fail.
	// Zero means unlimited.
	Limit uintptr
}

// NewHeap returns a Heap capped at limit bytes (0 for no cap).
func NewHeap(limit uintptr) *Heap {
	return &Heap{
		live:  make(map[unsafe.Pointer][]byte),
		Limit: limit,
	}
}

// Malloc implements Allocator.
func (h *Heap) Malloc(size uintptr) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mallocLocked(size)
}

// Calloc implements Allocator. Go memory is zeroed on allocation.
func (h *Heap) Calloc(n, size uintptr) unsafe.Pointer {
	total, ok := mulSize(n, size)
	if !ok {
		return nil
	}
	return h.Malloc(total)
}

// Realloc implements Allocator. Shrinking, or growing within the block's
// capacity, keeps the pointer.
func (h *Heap) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if p == nil {
		return h.mallocLocked(size)
	}
	buf, ok := h.live[p]
	if !ok {
		return nil
	}
	old := uintptr(len(buf))
	if size > old && !h.fits(size-old) {
		return nil
	}
	if size <= uintptr(cap(buf)) {
		h.live[p] = buf[:size]
		h.inUse = h.inUse - old + size
		return p
	}

	np := h.mallocLocked(size)
	if np == nil {
		return nil
	}
	copy(h.live[np], buf)
	h.freeLocked(p)
	return np
}

// Free implements Allocator. Unknown pointers are ignored.
func (h *Heap) Free(p unsafe.Pointer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.freeLocked(p)
}

// Owns reports whether p is a live block of this heap.
func (h *Heap) Owns(p unsafe.Pointer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.live[p]
	return ok
}

// InUse returns the bytes currently allocated.
func (h *Heap) InUse() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inUse
}

// Blocks returns the number of live blocks.
func (h *Heap) Blocks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// bytes returns the live block at p, or nil.
func (h *Heap) bytes(p unsafe.Pointer) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live[p]
}

func (h *Heap) fits(extra uintptr) bool {
	return h.Limit == 0 || (h.inUse+extra >= h.inUse && h.inUse+extra <= h.Limit)
}

func (h *Heap) mallocLocked(size uintptr) unsafe.Pointer {
	if !h.fits(size) {
		return nil
	}
	if h.live == nil {
		h.live = make(map[unsafe.Pointer][]byte)
	}
	// A zero-size request still gets a distinct address.
	buf := make([]byte, max(size, 1))
	p := unsafe.Pointer(unsafe.SliceData(buf))
	h.live[p] = buf[:size]
	h.inUse += size
	return p
}

func (h *Heap) freeLocked(p unsafe.Pointer) {
	buf, ok := h.live[p]
	if !ok {
		return
	}
	delete(h.live, p)
	h.inUse -= uintptr(len(buf))
}
