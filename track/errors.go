package track

import "errors"

var (
	// ErrUnknownLevel indicates a level name or number that ParseLevel does not recognize.
	ErrUnknownLevel = errors.New("track: unknown debug level")
)
