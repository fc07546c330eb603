//go:build !(linux || darwin || freebsd)

package sysalloc

// Mmap falls back to the Go heap where anonymous mappings are not available.
type Mmap struct {
	*Heap
}

// NewMmap returns an Mmap allocator.
func NewMmap() *Mmap { return &Mmap{Heap: NewHeap(0)} }
