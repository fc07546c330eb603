package track

import (
	"fmt"
	"strings"
)

// Level selects how much instrumentation a Tracker applies.
// Each level adds one capability to the previous one.
type Level int

const (
	// LevelOff forwards every call without logging or tracking.
	LevelOff Level = iota

	// LevelLog logs every call.
	LevelLog

	// LevelTrack logs every call and records live allocations for leak reports.
	LevelTrack

	// LevelStrict is LevelTrack plus refusal to free pointers the registry
	// does not know.
	LevelStrict
)

var levelNames = [...]string{"off", "log", "track", "strict"}

// Levels lists every level in ascending order.
var Levels = []Level{LevelOff, LevelLog, LevelTrack, LevelStrict}

// String returns the lower-case level name.
func (l Level) String() string {
	if l >= LevelOff && l <= LevelStrict {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Logs reports whether calls are logged.
func (l Level) Logs() bool { return l >= LevelLog }

// Tracks reports whether live allocations are recorded.
func (l Level) Tracks() bool { return l > LevelLog }

// Strict reports whether untracked frees are refused.
func (l Level) Strict() bool { return l >= LevelStrict }

// clamp maps out-of-range values onto the nearest defined level.
func (l Level) clamp() Level {
	return min(max(l, LevelOff), LevelStrict)
}

// ParseLevel accepts a level name (case-insensitive) or its number 0-3.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name || s == fmt.Sprint(i) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Set implements pflag.Value so a Level can be bound to a command-line flag.
func (l *Level) Set(s string) error { return l.UnmarshalText([]byte(s)) }

// Type implements pflag.Value.
func (l *Level) Type() string { return "level" }
