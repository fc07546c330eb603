//go:build cgo

package sysalloc

/*
#include <stdlib.h>

// cgo's own C.malloc aborts on exhaustion; these report NULL instead.
static void* ak_malloc(size_t n) { return malloc(n); }
static void* ak_calloc(size_t n, size_t size) { return calloc(n, size); }
static void* ak_realloc(void* p, size_t n) { return realloc(p, n); }
*/
import "C"

import "unsafe"

// Libc forwards to the C library allocator.
type Libc struct{}

// Malloc implements Allocator.
func (*Libc) Malloc(size uintptr) unsafe.Pointer {
	// malloc(0) may legally return NULL; ask for one byte instead.
	return C.ak_malloc(C.size_t(max(size, 1)))
}

// Calloc implements Allocator.
func (*Libc) Calloc(n, size uintptr) unsafe.Pointer {
	if _, ok := mulSize(n, size); !ok {
		return nil
	}
	return C.ak_calloc(C.size_t(max(n, 1)), C.size_t(max(size, 1)))
}

// Realloc implements Allocator.
func (*Libc) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	return C.ak_realloc(p, C.size_t(max(size, 1)))
}

// Free implements Allocator.
func (*Libc) Free(p unsafe.Pointer) {
	C.free(p)
}
