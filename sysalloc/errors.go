package sysalloc

import "errors"

var (
	// ErrUnknownAllocator indicates that Lookup was given a name it does not know.
	ErrUnknownAllocator = errors.New("sysalloc: unknown allocator")
)
