package testutil

import (
	"unsafe"

	"github.com/joshuapare/allockit/sysalloc"
)

// Call is one operation seen by a Recorder.
type Call struct {
	Op   string // "malloc", "calloc", "realloc" or "free"
	Ptr  unsafe.Pointer
	From unsafe.Pointer // realloc source
	Size uintptr
}

// Recorder is a sysalloc.Allocator that logs every call, tracks which
// pointers it considers live, and can be told to fail upcoming allocations.
//
// Example:
//
//	rec := testutil.NewRecorder()
//	tr := track.New(track.LevelStrict, &track.Options{Underlying: rec})
//	p := rec.Malloc(8) // allocated behind the tracker's back
//	tr.Free(p)
//	require.True(t, rec.Live(p))
type Recorder struct {
	Inner sysalloc.Allocator
	Calls []Call

	live     map[unsafe.Pointer]uintptr
	failNext int
}

// NewRecorder returns a Recorder over a fresh sysalloc.Heap.
func NewRecorder() *Recorder {
	return &Recorder{
		Inner: sysalloc.NewHeap(0),
		live:  make(map[unsafe.Pointer]uintptr),
	}
}

// FailNext makes the next n allocating calls return nil without reaching
// the inner allocator.
func (r *Recorder) FailNext(n int) { r.failNext = n }

func (r *Recorder) failing() bool {
	if r.failNext > 0 {
		r.failNext--
		return true
	}
	return false
}

// Malloc implements sysalloc.Allocator.
func (r *Recorder) Malloc(size uintptr) unsafe.Pointer {
	var p unsafe.Pointer
	if !r.failing() {
		p = r.Inner.Malloc(size)
	}
	r.Calls = append(r.Calls, Call{Op: "malloc", Ptr: p, Size: size})
	if p != nil {
		r.live[p] = size
	}
	return p
}

// Calloc implements sysalloc.Allocator.
func (r *Recorder) Calloc(n, size uintptr) unsafe.Pointer {
	var p unsafe.Pointer
	if !r.failing() {
		p = r.Inner.Calloc(n, size)
	}
	r.Calls = append(r.Calls, Call{Op: "calloc", Ptr: p, Size: n * size})
	if p != nil {
		r.live[p] = n * size
	}
	return p
}

// Realloc implements sysalloc.Allocator.
func (r *Recorder) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	var np unsafe.Pointer
	if !r.failing() {
		np = r.Inner.Realloc(p, size)
	}
	r.Calls = append(r.Calls, Call{Op: "realloc", Ptr: np, From: p, Size: size})
	if np != nil {
		delete(r.live, p)
		r.live[np] = size
	}
	return np
}

// Free implements sysalloc.Allocator.
func (r *Recorder) Free(p unsafe.Pointer) {
	r.Calls = append(r.Calls, Call{Op: "free", Ptr: p})
	delete(r.live, p)
	r.Inner.Free(p)
}

// Live reports whether p was allocated and not yet freed.
func (r *Recorder) Live(p unsafe.Pointer) bool {
	_, ok := r.live[p]
	return ok
}

// LiveCount returns the number of live pointers.
func (r *Recorder) LiveCount() int { return len(r.live) }

// Count returns how many calls of op were seen.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Freed reports whether Free was called with p.
func (r *Recorder) Freed(p unsafe.Pointer) bool {
	for _, c := range r.Calls {
		if c.Op == "free" && c.Ptr == p {
			return true
		}
	}
	return false
}
