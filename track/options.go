package track

import (
	"log/slog"

	"github.com/joshuapare/allockit/internal/diag"
	"github.com/joshuapare/allockit/sysalloc"
	"github.com/joshuapare/allockit/track/registry"
)

// Options configures a Tracker.
type Options struct {
	// Capacity bounds the number of live allocations recorded.
	// Default: registry.DefaultCapacity (1024)
	Capacity int

	// Underlying performs the real allocations.
	// Default: sysalloc.Default()
	Underlying sysalloc.Allocator

	// Logger receives one line per call, and the leak report.
	// Default: info to stdout, warnings and errors to stderr
	Logger *slog.Logger
}

// DefaultOptions returns the options used when New is given nil.
func DefaultOptions() *Options {
	return &Options{
		Capacity:   registry.DefaultCapacity,
		Underlying: sysalloc.Default(),
		Logger:     diag.Default(),
	}
}

// withDefaults returns a copy of o with zero fields filled in.
func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Capacity <= 0 {
		out.Capacity = registry.DefaultCapacity
	}
	if out.Underlying == nil {
		out.Underlying = sysalloc.Default()
	}
	if out.Logger == nil {
		out.Logger = diag.Default()
	}
	return out
}
