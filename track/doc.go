// Package track instruments the four primitive heap operations with logging,
// leak detection and strict release checking.
//
// # Overview
//
// A Tracker wraps an underlying sysalloc.Allocator. Every call is forwarded to
// the underlying allocator first; the tracker never changes the result. What
// happens around the call depends on the Tracker's Level:
//
//	Level   Logs each call  Maintains registry  Refuses untracked free
//	Off     no              no                  no
//	Log     yes             no                  no
//	Track   yes             yes                 no (warns)
//	Strict  yes             yes                 yes
//
// At Off the tracker is a pass-through: no logging, no registry and no
// counters.
//
// # Usage Example
//
//	t := track.New(track.LevelTrack, nil)
//	defer t.Close()
//
//	p := t.Malloc(64)
//	if p == nil {
//	    return errOutOfMemory
//	}
//	p = t.Realloc(p, 128)
//	t.Free(p)
//
// Malloc, Calloc, Realloc and Free capture the caller's file, line and
// function. The ...At variants take a Location explicitly; both forms
// produce identical records and log lines.
//
// # Registry
//
// Live allocations are kept in a registry.Registry with a fixed capacity
// (Options.Capacity, 1024 by default). Once full, new allocations are still
// returned to the caller but are not recorded: they will not show up as leaks,
// and freeing them later is reported as an untracked free.
//
// # Shutdown
//
// Close emits the leak report (a count header plus one line per record, in
// registry order) and returns the leaked records. It never frees them.
//
// # Known Limitations
//
// At LevelTrack, freeing an untracked pointer still calls the underlying Free.
// The tracker cannot tell a pointer allocated before tracking began from one
// that was already freed, so a genuine double free is forwarded to the
// allocator after the warning. Use LevelStrict to refuse such frees instead.
//
// # Thread Safety
//
// Tracker instances are not thread-safe. Callers must synchronize access
// externally.
package track
