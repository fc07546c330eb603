package sysalloc

import (
	"fmt"
	"math/bits"
	"strings"
	"unsafe"
)

// Allocator is the primitive heap interface wrapped by the tracking layer.
type Allocator interface {
	// Malloc allocates size bytes. Returns nil on exhaustion.
	Malloc(size uintptr) unsafe.Pointer

	// Calloc allocates n*size zeroed bytes. Returns nil on exhaustion or
	// when n*size overflows.
	Calloc(n, size uintptr) unsafe.Pointer

	// Realloc resizes the block at p to size bytes, preserving its prefix.
	// A nil p behaves like Malloc. On failure nil is returned and p stays valid.
	Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer

	// Free releases the block at p.
	Free(p unsafe.Pointer)
}

// Names lists the allocators known to Lookup.
var Names = []string{"libc", "heap", "pool", "mmap"}

var defaultLibc = &Libc{}

// Default returns the process system allocator.
func Default() Allocator { return defaultLibc }

// Lookup returns a fresh allocator for name.
// The "libc" name returns the shared process allocator.
func Lookup(name string) (Allocator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "libc", "system":
		return defaultLibc, nil
	case "heap":
		return NewHeap(0), nil
	case "pool":
		return NewPool(), nil
	case "mmap":
		return NewMmap(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownAllocator, name, strings.Join(Names, ", "))
	}
}

// mulSize returns n*size and whether the product fits in a uintptr.
func mulSize(n, size uintptr) (uintptr, bool) {
	hi, lo := bits.Mul(uint(n), uint(size))
	return uintptr(lo), hi == 0
}

// bytesAt views size bytes starting at p.
func bytesAt(p unsafe.Pointer, size uintptr) []byte {
	if p == nil || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), size)
}
