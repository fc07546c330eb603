package script

import "errors"

var (
	// ErrSyntax indicates a malformed script line.
	ErrSyntax = errors.New("script: syntax error")

	// ErrUnknownName indicates a reference to a name with no live allocation.
	ErrUnknownName = errors.New("script: unknown name")

	// ErrUnsupportedVersion indicates a version directive this parser cannot run.
	ErrUnsupportedVersion = errors.New("script: unsupported version")
)
