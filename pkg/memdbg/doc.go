/*
Package memdbg provides process-wide debug wrappers for malloc, calloc,
realloc and free.

# Quick Start

Pick a level once at startup and report leaks on the way out:

	func main() {
	    memdbg.Init(track.LevelTrack, nil)
	    defer memdbg.Shutdown()

	    p := memdbg.Malloc(64)
	    if p == nil {
	        log.Fatal("out of memory")
	    }
	    memdbg.Free(p)
	}

Every call records the caller's file, line and function. Code that already
knows its call site, such as an interpreter or a cgo bridge, can pass it
explicitly:

	p := memdbg.MallocAt(64, "parser.c", 120, "parse_expr")

Before Init the package forwards to sysalloc.Default() at track.LevelOff.

# Exit Paths

Go has no atexit. Call Shutdown from a deferred statement, or end the
process through Exit, which runs Shutdown before os.Exit:

	if err := run(); err != nil {
	    memdbg.Exit(1)
	}

# Disabling Instrumentation

Building with the memdbg_off tag compiles Malloc, Calloc, Realloc, Free and
their At variants down to direct calls on the underlying allocator. No call
site is captured, nothing is logged and nothing is recorded:

	go build -tags memdbg_off ./...

Enabled reports which variant was compiled in.

# Thread Safety

The default tracker is not thread-safe. Programs that allocate from several
goroutines must serialize calls themselves.
*/
package memdbg
