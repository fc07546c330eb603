//go:build memdbg_off

package memdbg

import "unsafe"

// Enabled reports whether instrumentation is compiled in.
const Enabled = false

// Malloc allocates size bytes.
func Malloc(size uintptr) unsafe.Pointer { return std.Underlying().Malloc(size) }

// Calloc allocates n*size zeroed bytes.
func Calloc(n, size uintptr) unsafe.Pointer { return std.Underlying().Calloc(n, size) }

// Realloc resizes p to size bytes.
func Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	return std.Underlying().Realloc(p, size)
}

// Free releases p.
func Free(p unsafe.Pointer) { std.Underlying().Free(p) }

// MallocAt allocates size bytes. The call site is ignored.
func MallocAt(size uintptr, _ string, _ int, _ string) unsafe.Pointer {
	return std.Underlying().Malloc(size)
}

// CallocAt allocates n*size zeroed bytes. The call site is ignored.
func CallocAt(n, size uintptr, _ string, _ int, _ string) unsafe.Pointer {
	return std.Underlying().Calloc(n, size)
}

// ReallocAt resizes p. The call site is ignored.
func ReallocAt(p unsafe.Pointer, size uintptr, _ string, _ int, _ string) unsafe.Pointer {
	return std.Underlying().Realloc(p, size)
}

// FreeAt releases p. The call site is ignored.
func FreeAt(p unsafe.Pointer, _ string, _ int, _ string) { std.Underlying().Free(p) }
