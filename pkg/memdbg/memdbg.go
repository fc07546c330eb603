package memdbg

import (
	"os"

	"github.com/joshuapare/allockit/track"
)

// std is the process-wide tracker. It starts as a pass-through.
var std = track.New(track.LevelOff, nil)

// exit is swapped out by tests.
var exit = os.Exit

// Init replaces the process-wide tracker with one at level and returns it.
// A nil opts uses track.DefaultOptions.
//
// Init is meant to be called once, before any allocation. Calling it again
// discards the previous tracker without a leak report.
func Init(level track.Level, opts *track.Options) *track.Tracker {
	std = track.New(level, opts)
	return std
}

// Default returns the process-wide tracker.
func Default() *track.Tracker { return std }

// Shutdown emits the leak report of the process-wide tracker and returns the
// leaked records. Only the first call after Init reports.
func Shutdown() []track.Record { return std.Close() }

// Exit runs Shutdown and terminates the process with code.
func Exit(code int) {
	Shutdown()
	exit(code)
}
