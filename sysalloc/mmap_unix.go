//go:build linux || darwin || freebsd

package sysalloc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapHeader precedes every block and stores the mapping length.
const mmapHeader = 16

// Mmap backs every allocation with its own anonymous private mapping.
type Mmap struct{}

// NewMmap returns an Mmap allocator.
func NewMmap() *Mmap { return &Mmap{} }

// Malloc implements Allocator.
func (m *Mmap) Malloc(size uintptr) unsafe.Pointer {
	total := size + mmapHeader
	if total < size || total > uintptr(^uint(0)>>1) {
		return nil
	}
	data, err := unix.Mmap(-1, 0, int(total), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil
	}
	base := unsafe.Pointer(unsafe.SliceData(data))
	*(*uintptr)(base) = total
	return unsafe.Add(base, mmapHeader)
}

// Calloc implements Allocator. Anonymous mappings start zeroed.
func (m *Mmap) Calloc(n, size uintptr) unsafe.Pointer {
	total, ok := mulSize(n, size)
	if !ok {
		return nil
	}
	return m.Malloc(total)
}

// Realloc implements Allocator. The block always moves to a new mapping.
func (m *Mmap) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	if p == nil {
		return m.Malloc(size)
	}
	np := m.Malloc(size)
	if np == nil {
		return nil
	}
	copy(bytesAt(np, size), bytesAt(p, blockSize(p)))
	m.Free(p)
	return np
}

// Free implements Allocator.
func (m *Mmap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	base := unsafe.Add(p, -mmapHeader)
	total := *(*uintptr)(base)
	// Munmap locates the mapping by its exact slice, so rebuild it.
	_ = unix.Munmap(unsafe.Slice((*byte)(base), total))
}

// blockSize returns the usable size of the block at p.
func blockSize(p unsafe.Pointer) uintptr {
	return *(*uintptr)(unsafe.Add(p, -mmapHeader)) - mmapHeader
}
