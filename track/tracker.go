package track

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/joshuapare/allockit/sysalloc"
	"github.com/joshuapare/allockit/track/registry"
)

// Record is a live allocation known to a Tracker.
type Record = registry.Record

// Stats counts instrumented calls. Counters only advance at LevelLog and above.
type Stats struct {
	Mallocs  uint64
	Callocs  uint64
	Reallocs uint64
	Frees    uint64

	// Failures counts allocation calls for which the underlying allocator
	// returned nil.
	Failures uint64

	// UntrackedFrees counts frees of unknown pointers that were forwarded
	// (LevelTrack).
	UntrackedFrees uint64

	// RefusedFrees counts frees of unknown pointers that were skipped
	// (LevelStrict).
	RefusedFrees uint64

	// Dropped counts allocations not recorded because the registry was full.
	Dropped uint64

	Live int // records currently held
	Peak int // most records held at once
}

// Tracker instruments an underlying allocator. See the package documentation
// for the per-level behavior.
type Tracker struct {
	level  Level
	under  sysalloc.Allocator
	reg    *registry.Registry
	log    *slog.Logger
	stats  Stats
	closed bool
}

// New returns a Tracker at the given level. A nil opts uses DefaultOptions.
// Levels outside the defined range are clamped.
func New(level Level, opts *Options) *Tracker {
	o := opts.withDefaults()
	return &Tracker{
		level: level.clamp(),
		under: o.Underlying,
		reg:   registry.New(o.Capacity),
		log:   o.Logger,
	}
}

// Level returns the tracker's level.
func (t *Tracker) Level() Level { return t.level }

// Underlying returns the wrapped allocator.
func (t *Tracker) Underlying() sysalloc.Allocator { return t.under }

// Capacity returns the maximum number of records held.
func (t *Tracker) Capacity() int { return t.reg.Cap() }

// Tracked reports whether p is currently recorded.
func (t *Tracker) Tracked(p unsafe.Pointer) bool { return t.reg.Find(p) >= 0 }

// Stats returns a snapshot of the call counters.
func (t *Tracker) Stats() Stats {
	s := t.stats
	s.Live = t.reg.Len()
	return s
}

// Malloc allocates size bytes, recording the caller as the call site.
func (t *Tracker) Malloc(size uintptr) unsafe.Pointer {
	if t.level == LevelOff {
		return t.under.Malloc(size)
	}
	return t.MallocAt(size, Caller(1))
}

// Calloc allocates n*size zeroed bytes, recording the caller as the call site.
func (t *Tracker) Calloc(n, size uintptr) unsafe.Pointer {
	if t.level == LevelOff {
		return t.under.Calloc(n, size)
	}
	return t.CallocAt(n, size, Caller(1))
}

// Realloc resizes p to size bytes, recording the caller as the call site.
func (t *Tracker) Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	if t.level == LevelOff {
		return t.under.Realloc(p, size)
	}
	return t.ReallocAt(p, size, Caller(1))
}

// Free releases p, recording the caller as the call site.
func (t *Tracker) Free(p unsafe.Pointer) {
	if t.level == LevelOff {
		t.under.Free(p)
		return
	}
	t.FreeAt(p, Caller(1))
}

// MallocAt allocates size bytes on behalf of loc.
func (t *Tracker) MallocAt(size uintptr, loc Location) unsafe.Pointer {
	p := t.under.Malloc(size)
	if !t.level.Logs() {
		return p
	}
	t.stats.Mallocs++
	if p == nil {
		t.stats.Failures++
		t.log.Error("malloc failed", sizeAttr(size), atAttr(loc), funcAttr(loc))
		return nil
	}
	t.log.Info("malloc", ptrAttr("ptr", p), sizeAttr(size), atAttr(loc), funcAttr(loc))
	if t.level.Tracks() {
		t.record(p, size, loc)
	}
	return p
}

// CallocAt allocates n*size zeroed bytes on behalf of loc.
func (t *Tracker) CallocAt(n, size uintptr, loc Location) unsafe.Pointer {
	p := t.under.Calloc(n, size)
	if !t.level.Logs() {
		return p
	}
	t.stats.Callocs++
	if p == nil {
		t.stats.Failures++
		t.log.Error("calloc failed",
			slog.Uint64("count", uint64(n)), slog.Uint64("elem", uint64(size)), atAttr(loc), funcAttr(loc))
		return nil
	}
	t.log.Info("calloc", ptrAttr("ptr", p),
		slog.Uint64("count", uint64(n)), slog.Uint64("elem", uint64(size)), atAttr(loc), funcAttr(loc))
	if t.level.Tracks() {
		t.record(p, n*size, loc)
	}
	return p
}

// ReallocAt resizes p to size bytes on behalf of loc.
//
// On success the record for p, if any, is replaced by one for the returned
// pointer, even when the block did not move. On failure the registry is left
// alone because p is still valid.
func (t *Tracker) ReallocAt(p unsafe.Pointer, size uintptr, loc Location) unsafe.Pointer {
	np := t.under.Realloc(p, size)
	if !t.level.Logs() {
		return np
	}
	t.stats.Reallocs++
	if np == nil {
		t.stats.Failures++
		t.log.Error("realloc failed", ptrAttr("from", p), sizeAttr(size), atAttr(loc), funcAttr(loc))
		return nil
	}
	t.log.Info("realloc", ptrAttr("ptr", np), ptrAttr("from", p), sizeAttr(size), atAttr(loc), funcAttr(loc))
	if t.level.Tracks() {
		t.reg.Remove(p)
		t.record(np, size, loc)
	}
	return np
}

// FreeAt releases p on behalf of loc.
//
// At LevelStrict a pointer missing from the registry is not passed to the
// underlying allocator; the memory stays allocated.
func (t *Tracker) FreeAt(p unsafe.Pointer, loc Location) {
	switch t.level {
	case LevelOff:
		t.under.Free(p)

	case LevelLog:
		t.stats.Frees++
		t.log.Info("free", ptrAttr("ptr", p), atAttr(loc), funcAttr(loc))
		t.under.Free(p)

	case LevelTrack:
		t.stats.Frees++
		if t.reg.Remove(p) {
			t.log.Info("free", ptrAttr("ptr", p), atAttr(loc), funcAttr(loc))
		} else {
			t.stats.UntrackedFrees++
			t.log.Warn("freed untracked pointer", ptrAttr("ptr", p), atAttr(loc), funcAttr(loc))
		}
		t.under.Free(p)

	case LevelStrict:
		t.stats.Frees++
		if !t.reg.Remove(p) {
			t.stats.RefusedFrees++
			t.log.Error("refused to free untracked pointer", ptrAttr("ptr", p), atAttr(loc), funcAttr(loc))
			return
		}
		t.log.Info("free", ptrAttr("ptr", p), atAttr(loc), funcAttr(loc))
		t.under.Free(p)
	}
}

// record inserts a registry entry for p. A full registry drops it.
func (t *Tracker) record(p unsafe.Pointer, size uintptr, loc Location) {
	ok := t.reg.Insert(Record{Ptr: p, Size: size, File: loc.File, Line: loc.Line, Func: loc.Func})
	if !ok {
		t.stats.Dropped++
		return
	}
	t.stats.Peak = max(t.stats.Peak, t.reg.Len())
}

func ptrAttr(key string, p unsafe.Pointer) slog.Attr {
	return slog.String(key, fmt.Sprintf("%p", p))
}

func sizeAttr(size uintptr) slog.Attr {
	return slog.Uint64("size", uint64(size))
}

func atAttr(loc Location) slog.Attr {
	return slog.String("at", loc.String())
}

func funcAttr(loc Location) slog.Attr {
	return slog.String("func", loc.Func)
}
