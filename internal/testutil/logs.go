package testutil

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/joshuapare/allockit/internal/diag"
)

// Logs captures the two diagnostic streams of a logger.
type Logs struct {
	Out bytes.Buffer
	Err bytes.Buffer
}

// NewLogs returns an uncolored diag logger writing into the returned Logs.
func NewLogs() (*Logs, *slog.Logger) {
	l := &Logs{}
	return l, diag.New(diag.Options{Out: &l.Out, Err: &l.Err, NoColor: true})
}

// OutLines returns the info lines written so far.
func (l *Logs) OutLines() []string { return splitLines(l.Out.String()) }

// ErrLines returns the warning and error lines written so far.
func (l *Logs) ErrLines() []string { return splitLines(l.Err.String()) }

// Reset discards everything captured.
func (l *Logs) Reset() {
	l.Out.Reset()
	l.Err.Reset()
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
