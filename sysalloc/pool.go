package sysalloc

import (
	"sync"
	"unsafe"

	"github.com/eapache/queue"
)

const (
	minClassShift = 4  // 16 B
	maxClassShift = 12 // 4 KiB
	numClasses    = maxClassShift - minClassShift + 1
)

// MaxPooledSize is the largest request served from a size class. Larger
// requests go to the fallback Heap.
const MaxPooledSize = 1 << maxClassShift

// pooledBlock is a live block handed out by a Pool.
type pooledBlock struct {
	class int
	size  uintptr
}

// Pool serves small requests from power-of-two size classes and recycles
// freed blocks through per-class FIFO queues.
type Pool struct {
	mu sync.Mutex

	// blocks keeps every block the pool ever created reachable.
	blocks map[unsafe.Pointer][]byte
	live   map[unsafe.Pointer]pooledBlock
	free   [numClasses]*queue.Queue

	fallback *Heap
	reused   uint64
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	p := &Pool{
		blocks:   make(map[unsafe.Pointer][]byte),
		live:     make(map[unsafe.Pointer]pooledBlock),
		fallback: NewHeap(0),
	}
	for i := range p.free {
		p.free[i] = queue.New()
	}
	return p
}

// classFor returns the size class index for size, or -1 if too large.
func classFor(size uintptr) int {
	for c := range numClasses {
		if size <= classSize(c) {
			return c
		}
	}
	return -1
}

func classSize(c int) uintptr { return 1 << (minClassShift + c) }

// Malloc implements Allocator.
func (p *Pool) Malloc(size uintptr) unsafe.Pointer {
	c := classFor(size)
	if c < 0 {
		return p.fallback.Malloc(size)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.takeLocked(c, size)
}

// Calloc implements Allocator. Recycled blocks are cleared before reuse.
func (p *Pool) Calloc(n, size uintptr) unsafe.Pointer {
	total, ok := mulSize(n, size)
	if !ok {
		return nil
	}
	c := classFor(total)
	if c < 0 {
		return p.fallback.Malloc(total)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ptr := p.takeLocked(c, total)
	clear(p.blocks[ptr])
	return ptr
}

// Realloc implements Allocator. A pooled block that still fits its class is
// resized in place.
func (p *Pool) Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	if ptr == nil {
		return p.Malloc(size)
	}

	p.mu.Lock()
	blk, pooled := p.live[ptr]
	if pooled && size <= classSize(blk.class) {
		blk.size = size
		p.live[ptr] = blk
		p.mu.Unlock()
		return ptr
	}
	p.mu.Unlock()

	var old []byte
	if pooled {
		old = bytesAt(ptr, blk.size)
	} else {
		if classFor(size) < 0 {
			return p.fallback.Realloc(ptr, size)
		}
		old = p.fallback.bytes(ptr)
		if old == nil {
			return nil
		}
	}

	np := p.Malloc(size)
	if np == nil {
		return nil
	}
	copy(bytesAt(np, size), old)
	p.Free(ptr)
	return np
}

// Free implements Allocator. Pooled blocks are parked for reuse.
func (p *Pool) Free(ptr unsafe.Pointer) {
	p.mu.Lock()
	blk, ok := p.live[ptr]
	if ok {
		delete(p.live, ptr)
		p.free[blk.class].Add(ptr)
	}
	p.mu.Unlock()

	if !ok {
		p.fallback.Free(ptr)
	}
}

// Parked returns the number of freed blocks waiting for reuse.
func (p *Pool) Parked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, q := range p.free {
		n += q.Length()
	}
	return n
}

// Reused returns how many allocations were served from a parked block.
func (p *Pool) Reused() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reused
}

func (p *Pool) takeLocked(c int, size uintptr) unsafe.Pointer {
	var ptr unsafe.Pointer
	if q := p.free[c]; q.Length() > 0 {
		ptr = q.Remove().(unsafe.Pointer)
		p.reused++
	} else {
		buf := make([]byte, classSize(c))
		ptr = unsafe.Pointer(unsafe.SliceData(buf))
		p.blocks[ptr] = buf
	}
	p.live[ptr] = pooledBlock{class: c, size: size}
	return ptr
}
