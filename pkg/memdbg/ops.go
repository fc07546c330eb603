//go:build !memdbg_off

package memdbg

import (
	"unsafe"

	"github.com/joshuapare/allockit/track"
)

// Enabled reports whether instrumentation is compiled in.
const Enabled = true

// Malloc allocates size bytes.
func Malloc(size uintptr) unsafe.Pointer {
	if std.Level() == track.LevelOff {
		return std.Underlying().Malloc(size)
	}
	return std.MallocAt(size, track.Caller(1))
}

// Calloc allocates n*size zeroed bytes.
func Calloc(n, size uintptr) unsafe.Pointer {
	if std.Level() == track.LevelOff {
		return std.Underlying().Calloc(n, size)
	}
	return std.CallocAt(n, size, track.Caller(1))
}

// Realloc resizes p to size bytes.
func Realloc(p unsafe.Pointer, size uintptr) unsafe.Pointer {
	if std.Level() == track.LevelOff {
		return std.Underlying().Realloc(p, size)
	}
	return std.ReallocAt(p, size, track.Caller(1))
}

// Free releases p.
func Free(p unsafe.Pointer) {
	if std.Level() == track.LevelOff {
		std.Underlying().Free(p)
		return
	}
	std.FreeAt(p, track.Caller(1))
}

// MallocAt allocates size bytes on behalf of the given call site.
func MallocAt(size uintptr, file string, line int, fn string) unsafe.Pointer {
	return std.MallocAt(size, track.Location{File: file, Line: line, Func: fn})
}

// CallocAt allocates n*size zeroed bytes on behalf of the given call site.
func CallocAt(n, size uintptr, file string, line int, fn string) unsafe.Pointer {
	return std.CallocAt(n, size, track.Location{File: file, Line: line, Func: fn})
}

// ReallocAt resizes p on behalf of the given call site.
func ReallocAt(p unsafe.Pointer, size uintptr, file string, line int, fn string) unsafe.Pointer {
	return std.ReallocAt(p, size, track.Location{File: file, Line: line, Func: fn})
}

// FreeAt releases p on behalf of the given call site.
func FreeAt(p unsafe.Pointer, file string, line int, fn string) {
	std.FreeAt(p, track.Location{File: file, Line: line, Func: fn})
}
