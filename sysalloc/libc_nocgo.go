//go:build !cgo

package sysalloc

import (
	"log/slog"
	"sync"
	"unsafe"
)

// Libc falls back to the Go heap when cgo is disabled at compile time.
type Libc struct {
	once sync.Once
	heap *Heap
}

func (l *Libc) h() *Heap {
	l.once.Do(func() {
		slog.Warn("sysalloc: cgo disabled, libc allocator falls back to the Go heap")
		l.heap = NewHeap(0)
	})
	return l.heap
}

// Malloc implements Allocator.
func (l *Libc) Malloc(size uintptr) unsafe.Pointer { return l.h().Malloc(size) }

// Calloc implements Allocator.
func (l *Libc) Calloc(n, size uintptr) unsafe.Pointer { return l.h().Calloc(n, size) }

// Realloc implements Allocator.
func (l *Libc) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	return l.h().Realloc(p, size)
}

// Free implements Allocator.
func (l *Libc) Free(p unsafe.Pointer) { l.h().Free(p) }
