package track

import (
	"path/filepath"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/allockit/internal/testutil"
)

var site = Location{File: "main.c", Line: 10, Func: "main"}

// newTestTracker returns a tracker over a Recorder with captured logs.
func newTestTracker(t *testing.T, level Level, capacity int) (*Tracker, *testutil.Recorder, *testutil.Logs) {
	t.Helper()
	rec := testutil.NewRecorder()
	logs, log := testutil.NewLogs()
	tr := New(level, &Options{Capacity: capacity, Underlying: rec, Logger: log})
	return tr, rec, logs
}

// TestTracker_NewDefaults tests option defaulting and level clamping.
func TestTracker_NewDefaults(t *testing.T) {
	tr := New(LevelTrack, nil)
	assert.Equal(t, LevelTrack, tr.Level())
	assert.Equal(t, 1024, tr.Capacity())
	assert.NotNil(t, tr.Underlying())

	assert.Equal(t, LevelStrict, New(Level(9), nil).Level())

	opts := DefaultOptions()
	assert.Equal(t, 1024, opts.Capacity)
	assert.NotNil(t, opts.Underlying)
	assert.NotNil(t, opts.Logger)
}

// TestTracker_OffIsPassThrough tests that LevelOff logs and records nothing.
func TestTracker_OffIsPassThrough(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelOff, 0)

	p := tr.MallocAt(16, site)
	require.NotNil(t, p)
	p = tr.ReallocAt(p, 32, site)
	require.NotNil(t, p)
	z := tr.Calloc(2, 8)
	require.NotNil(t, z)
	tr.FreeAt(p, site)
	tr.Free(z)

	rec.FailNext(1)
	assert.Nil(t, tr.Malloc(8))

	assert.Empty(t, logs.Out.String())
	assert.Empty(t, logs.Err.String())
	assert.Zero(t, tr.Stats())
	assert.Nil(t, tr.Close())
	assert.Equal(t, 2, rec.Count("free"))
}

// TestTracker_LogLevel tests one line per call and no registry.
func TestTracker_LogLevel(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelLog, 0)

	p := tr.MallocAt(16, site)
	require.NotNil(t, p)
	z := tr.CallocAt(4, 4, site)
	require.NotNil(t, z)
	p = tr.ReallocAt(p, 64, site)
	require.NotNil(t, p)
	tr.FreeAt(p, site)

	// Unknown pointers are freed without complaint at this level.
	stray := rec.Malloc(8)
	tr.FreeAt(stray, site)

	assert.Len(t, logs.OutLines(), 5)
	assert.Empty(t, logs.ErrLines())
	assert.Nil(t, tr.Leaks())
	assert.Zero(t, tr.Stats().Live)
	assert.False(t, rec.Live(stray))
	assert.Nil(t, tr.Close(), "Log level never reports leaks")
	assert.Empty(t, logs.ErrLines())
	assert.True(t, rec.Live(z), "unfreed memory is still live")
}

// TestTracker_TrackAllocFree tests the basic tracked lifecycle.
func TestTracker_TrackAllocFree(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelTrack, 0)

	p := tr.MallocAt(16, site)
	require.NotNil(t, p)

	leaks := tr.Leaks()
	require.Len(t, leaks, 1)
	assert.Equal(t, p, leaks[0].Ptr)
	assert.Equal(t, uintptr(16), leaks[0].Size)
	assert.Equal(t, "main.c", leaks[0].File)
	assert.Equal(t, 10, leaks[0].Line)
	assert.Equal(t, "main", leaks[0].Func)

	tr.FreeAt(p, site)
	assert.Empty(t, tr.Leaks())
	assert.True(t, rec.Freed(p))

	assert.Nil(t, tr.Close())
	assert.Empty(t, logs.ErrLines(), "no leak report expected")
	require.Len(t, logs.OutLines(), 2)
	assert.Contains(t, logs.OutLines()[0], "msg=malloc")
	assert.Contains(t, logs.OutLines()[0], "size=16")
	assert.Contains(t, logs.OutLines()[0], "at=main.c:10")
	assert.Contains(t, logs.OutLines()[0], "func=main")
	assert.Contains(t, logs.OutLines()[1], "msg=free")
}

// TestTracker_BalancedPairsLeaveNoLeaks tests alloc/free pairs at both tracking levels.
func TestTracker_BalancedPairsLeaveNoLeaks(t *testing.T) {
	for _, level := range []Level{LevelTrack, LevelStrict} {
		t.Run(level.String(), func(t *testing.T) {
			tr, rec, logs := newTestTracker(t, level, 0)

			var ptrs []unsafe.Pointer
			for i := range 50 {
				var p unsafe.Pointer
				if i%3 == 0 {
					p = tr.CallocAt(uintptr(i+1), 4, site)
				} else {
					p = tr.MallocAt(uintptr(i+1), site)
				}
				require.NotNil(t, p)
				if i%5 == 0 {
					p = tr.ReallocAt(p, uintptr(2*i+8), site)
					require.NotNil(t, p)
				}
				ptrs = append(ptrs, p)
			}
			assert.Equal(t, 50, tr.Stats().Live)

			// Release in an interleaved order.
			for i := 0; i < len(ptrs); i += 2 {
				tr.FreeAt(ptrs[i], site)
			}
			for i := 1; i < len(ptrs); i += 2 {
				tr.FreeAt(ptrs[i], site)
			}

			assert.Nil(t, tr.Close())
			assert.Empty(t, logs.ErrLines())
			assert.Zero(t, rec.LiveCount())
			assert.Equal(t, 50, tr.Stats().Peak)
		})
	}
}

// TestTracker_CapacityOverflow tests silent under-tracking once the registry is full.
func TestTracker_CapacityOverflow(t *testing.T) {
	const capacity = 8
	tr, rec, logs := newTestTracker(t, LevelTrack, capacity)

	var last unsafe.Pointer
	for range capacity + 1 {
		last = tr.MallocAt(4, site)
		require.NotNil(t, last)
	}

	assert.Len(t, tr.Leaks(), capacity)
	assert.False(t, tr.Tracked(last), "overflow allocation should not be recorded")
	assert.True(t, rec.Live(last), "overflow allocation is still valid")
	assert.Equal(t, uint64(1), tr.Stats().Dropped)
	assert.Empty(t, logs.ErrLines(), "dropping a record is silent")
	assert.Len(t, logs.OutLines(), capacity+1)

	// Releasing the untracked allocation warns but still frees.
	tr.FreeAt(last, site)
	assert.True(t, rec.Freed(last))
	require.Len(t, logs.ErrLines(), 1)
	assert.Contains(t, logs.ErrLines()[0], "freed untracked pointer")
}

// TestTracker_DefaultCapacityOverflow tests MAX_RECORDS+1 with the default table.
func TestTracker_DefaultCapacityOverflow(t *testing.T) {
	tr, rec, _ := newTestTracker(t, LevelTrack, 0)

	var last unsafe.Pointer
	for range 1025 {
		last = tr.MallocAt(1, site)
		require.NotNil(t, last)
	}
	assert.Len(t, tr.Leaks(), 1024)
	assert.True(t, rec.Live(last))
}

// TestTracker_TrackUntrackedFree tests the warning path at LevelTrack.
func TestTracker_TrackUntrackedFree(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelTrack, 0)

	kept := tr.MallocAt(8, site)
	stray := rec.Malloc(8)
	require.NotNil(t, stray)

	tr.FreeAt(stray, site)

	assert.True(t, rec.Freed(stray), "underlying free should run")
	assert.False(t, rec.Live(stray))
	require.Len(t, tr.Leaks(), 1)
	assert.Equal(t, kept, tr.Leaks()[0].Ptr, "registry should be unchanged")

	require.Len(t, logs.ErrLines(), 1)
	assert.Contains(t, logs.ErrLines()[0], "level=WARN")
	assert.Contains(t, logs.ErrLines()[0], "freed untracked pointer")
	assert.Equal(t, uint64(1), tr.Stats().UntrackedFrees)
}

// TestTracker_StrictRefusesUntrackedFree tests that LevelStrict skips the underlying free.
func TestTracker_StrictRefusesUntrackedFree(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelStrict, 0)

	kept := tr.MallocAt(8, site)
	stray := rec.Malloc(8)
	require.NotNil(t, stray)

	tr.FreeAt(stray, site)

	assert.False(t, rec.Freed(stray), "underlying free must not run")
	assert.True(t, rec.Live(stray), "memory should stay allocated")
	require.Len(t, tr.Leaks(), 1)
	assert.Equal(t, kept, tr.Leaks()[0].Ptr)

	require.Len(t, logs.ErrLines(), 1)
	assert.Contains(t, logs.ErrLines()[0], "level=ERROR")
	assert.Contains(t, logs.ErrLines()[0], "refused to free untracked pointer")
	assert.Equal(t, uint64(1), tr.Stats().RefusedFrees)

	// A tracked pointer is still released normally.
	tr.FreeAt(kept, site)
	assert.True(t, rec.Freed(kept))
	assert.Empty(t, tr.Leaks())
}

// TestTracker_StrictDoubleFree tests that a second free of the same pointer is refused.
func TestTracker_StrictDoubleFree(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelStrict, 0)

	p := tr.MallocAt(8, site)
	tr.FreeAt(p, site)
	tr.FreeAt(p, site)

	assert.Equal(t, 1, rec.Count("free"))
	require.Len(t, logs.ErrLines(), 1)
	assert.Contains(t, logs.ErrLines()[0], "refused")
}

// TestTracker_ReallocMovesRecord tests resize of A (10) to B (20).
func TestTracker_ReallocMovesRecord(t *testing.T) {
	tr, _, logs := newTestTracker(t, LevelTrack, 0)

	a := tr.MallocAt(10, site)
	require.NotNil(t, a)
	b := tr.ReallocAt(a, 4096, site)
	require.NotNil(t, b)
	require.NotEqual(t, a, b, "heap should move a block that outgrows it")

	assert.False(t, tr.Tracked(a))
	leaks := tr.Leaks()
	require.Len(t, leaks, 1)
	assert.Equal(t, b, leaks[0].Ptr)
	assert.Equal(t, uintptr(4096), leaks[0].Size)

	line := logs.OutLines()[1]
	assert.Contains(t, line, "msg=realloc")
	assert.Contains(t, line, "size=4096")
}

// TestTracker_ReallocInPlaceReplacesRecord tests remove-then-insert for an unmoved block.
func TestTracker_ReallocInPlaceReplacesRecord(t *testing.T) {
	tr, _, _ := newTestTracker(t, LevelTrack, 0)

	first := tr.MallocAt(32, site)
	a := tr.MallocAt(20, site)
	last := tr.MallocAt(8, site)

	b := tr.ReallocAt(a, 10, Location{File: "resize.c", Line: 7, Func: "shrink"})
	require.Equal(t, a, b, "shrinking heap blocks stay in place")

	leaks := tr.Leaks()
	require.Len(t, leaks, 3)
	assert.Equal(t, []unsafe.Pointer{first, last, b}, []unsafe.Pointer{leaks[0].Ptr, leaks[1].Ptr, leaks[2].Ptr},
		"replaced record moves to the end")
	assert.Equal(t, uintptr(10), leaks[2].Size)
	assert.Equal(t, "resize.c", leaks[2].File)
}

// TestTracker_ReallocUntrackedSource tests that resizing an unknown pointer starts tracking it.
func TestTracker_ReallocUntrackedSource(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelStrict, 0)

	stray := rec.Malloc(8)
	np := tr.ReallocAt(stray, 16, site)
	require.NotNil(t, np)

	assert.True(t, tr.Tracked(np))
	assert.Empty(t, logs.ErrLines(), "realloc does not distinguish tracked sources")
}

// TestTracker_ReallocNil tests that realloc of nil records a fresh allocation.
func TestTracker_ReallocNil(t *testing.T) {
	tr, _, _ := newTestTracker(t, LevelTrack, 0)

	p := tr.ReallocAt(nil, 24, site)
	require.NotNil(t, p)
	require.Len(t, tr.Leaks(), 1)
	assert.Equal(t, uintptr(24), tr.Leaks()[0].Size)
}

// TestTracker_CallocRecordsTotalSize tests the recorded size of zero-allocations.
func TestTracker_CallocRecordsTotalSize(t *testing.T) {
	tr, _, logs := newTestTracker(t, LevelTrack, 0)

	p := tr.CallocAt(6, 8, site)
	require.NotNil(t, p)
	require.Len(t, tr.Leaks(), 1)
	assert.Equal(t, uintptr(48), tr.Leaks()[0].Size)

	line := logs.OutLines()[0]
	assert.Contains(t, line, "msg=calloc")
	assert.Contains(t, line, "count=6")
	assert.Contains(t, line, "elem=8")
}

// TestTracker_FailuresAreLoggedAndPropagated tests nil results at every allocating call.
func TestTracker_FailuresAreLoggedAndPropagated(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelStrict, 0)

	kept := tr.MallocAt(16, site)
	require.NotNil(t, kept)
	logs.Reset()

	rec.FailNext(3)
	assert.Nil(t, tr.MallocAt(100, site))
	assert.Nil(t, tr.CallocAt(10, 10, site))
	assert.Nil(t, tr.ReallocAt(kept, 200, site))

	errs := logs.ErrLines()
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "malloc failed")
	assert.Contains(t, errs[0], "size=100")
	assert.Contains(t, errs[1], "calloc failed")
	assert.Contains(t, errs[1], "count=10")
	assert.Contains(t, errs[2], "realloc failed")
	assert.Contains(t, errs[2], "size=200")
	for _, line := range errs {
		assert.Contains(t, line, "at=main.c:10")
	}
	assert.Empty(t, logs.OutLines())

	// The old block is still valid and still tracked.
	require.Len(t, tr.Leaks(), 1)
	assert.Equal(t, kept, tr.Leaks()[0].Ptr)
	assert.Equal(t, uintptr(16), tr.Leaks()[0].Size)
	assert.Equal(t, uint64(3), tr.Stats().Failures)
}

// TestTracker_LeakReport tests the shutdown report format and ordering.
func TestTracker_LeakReport(t *testing.T) {
	tr, _, logs := newTestTracker(t, LevelTrack, 0)

	a := tr.MallocAt(11, Location{File: "a.c", Line: 1, Func: "fa"})
	b := tr.MallocAt(22, Location{File: "b.c", Line: 2, Func: "fb"})
	c := tr.MallocAt(33, Location{File: "c.c", Line: 3, Func: "fc"})
	tr.FreeAt(b, site)

	leaks := tr.Close()
	require.Len(t, leaks, 2)
	assert.Equal(t, a, leaks[0].Ptr)
	assert.Equal(t, c, leaks[1].Ptr)

	errs := logs.ErrLines()
	require.Len(t, errs, 3, "one header plus one line per leak")
	assert.Contains(t, errs[0], "allocations not freed")
	assert.Contains(t, errs[0], "count=2")
	assert.Contains(t, errs[1], "msg=leak")
	assert.Contains(t, errs[1], "size=11")
	assert.Contains(t, errs[1], "at=a.c:1")
	assert.Contains(t, errs[1], "func=fa")
	assert.Contains(t, errs[2], "size=33")
	assert.Contains(t, errs[2], "func=fc")
	for _, line := range errs {
		assert.True(t, strings.HasPrefix(line, "level=WARN"))
	}
}

// TestTracker_CloseRunsOnce tests that the report is emitted a single time.
func TestTracker_CloseRunsOnce(t *testing.T) {
	tr, rec, logs := newTestTracker(t, LevelStrict, 0)
	p := tr.MallocAt(8, site)

	require.False(t, tr.Closed())
	require.Len(t, tr.Close(), 1)
	require.True(t, tr.Closed())
	n := len(logs.ErrLines())

	assert.Nil(t, tr.Close())
	assert.Len(t, logs.ErrLines(), n)
	assert.True(t, rec.Live(p), "Close must not free leaked memory")
	assert.Len(t, tr.Leaks(), 1, "Leaks still reflects the registry")
}

// TestTracker_CapturesCaller tests automatic call-site capture.
func TestTracker_CapturesCaller(t *testing.T) {
	tr, _, logs := newTestTracker(t, LevelTrack, 0)

	p := tr.Malloc(8)
	z := tr.Calloc(1, 8)
	p = tr.Realloc(p, 16)
	tr.Free(z)

	leaks := tr.Leaks()
	require.Len(t, leaks, 1)
	assert.Equal(t, p, leaks[0].Ptr)
	assert.Equal(t, "tracker_test.go", filepath.Base(leaks[0].File))
	assert.Equal(t, "track.TestTracker_CapturesCaller", leaks[0].Func)

	for _, line := range logs.OutLines() {
		assert.Contains(t, line, "tracker_test.go:")
	}
}

// TestTracker_Stats tests counters across a mixed workload.
func TestTracker_Stats(t *testing.T) {
	tr, rec, _ := newTestTracker(t, LevelTrack, 2)

	a := tr.MallocAt(1, site)
	b := tr.CallocAt(1, 1, site)
	c := tr.MallocAt(1, site) // dropped
	a = tr.ReallocAt(a, 2, site)
	tr.FreeAt(b, site)
	tr.FreeAt(c, site) // untracked
	rec.FailNext(1)
	tr.MallocAt(1, site)

	s := tr.Stats()
	assert.Equal(t, uint64(3), s.Mallocs)
	assert.Equal(t, uint64(1), s.Callocs)
	assert.Equal(t, uint64(1), s.Reallocs)
	assert.Equal(t, uint64(2), s.Frees)
	assert.Equal(t, uint64(1), s.Failures)
	assert.Equal(t, uint64(1), s.UntrackedFrees)
	assert.Equal(t, uint64(1), s.Dropped)
	assert.Equal(t, 1, s.Live)
	assert.Equal(t, 2, s.Peak)
	assert.True(t, tr.Tracked(a))
}
