// Package diag renders tracker diagnostics as line-oriented text on two
// streams: informational lines on one, warnings and errors on the other.
package diag

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	warnColor  = lipgloss.Color("3") // ANSI yellow
	errorColor = lipgloss.Color("1") // ANSI red
)

// Options configures a diagnostic logger.
type Options struct {
	Out     io.Writer  // Info lines. Default: os.Stdout
	Err     io.Writer  // Warn and Error lines. Default: os.Stderr
	NoColor bool       // Never style the Err stream
	Level   slog.Level // Minimum level. Default: LevelInfo
}

// Handler is a slog.Handler that routes records by level.
type Handler struct {
	level slog.Level
	info  slog.Handler
	warn  slog.Handler
	err   slog.Handler
}

// New returns a logger backed by a Handler built from opts.
func New(opts Options) *slog.Logger {
	return slog.New(NewHandler(opts))
}

// Default returns a logger writing to stdout and stderr.
func Default() *slog.Logger {
	return New(Options{})
}

// NewHandler builds a Handler from opts.
func NewHandler(opts Options) *Handler {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errw := opts.Err
	if errw == nil {
		errw = os.Stderr
	}

	warnw, errorw := errw, errw
	if !opts.NoColor && IsTerminal(errw) {
		r := lipgloss.NewRenderer(errw)
		warnw = &styledWriter{w: errw, style: r.NewStyle().Foreground(warnColor)}
		errorw = &styledWriter{w: errw, style: r.NewStyle().Foreground(errorColor).Bold(true)}
	}

	ho := &slog.HandlerOptions{Level: slog.LevelDebug, ReplaceAttr: dropTime}
	return &Handler{
		level: opts.Level,
		info:  slog.NewTextHandler(out, ho),
		warn:  slog.NewTextHandler(warnw, ho),
		err:   slog.NewTextHandler(errorw, ho),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	switch {
	case r.Level >= slog.LevelError:
		return h.err.Handle(ctx, r)
	case r.Level >= slog.LevelWarn:
		return h.warn.Handle(ctx, r)
	default:
		return h.info.Handle(ctx, r)
	}
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		level: h.level,
		info:  h.info.WithAttrs(attrs),
		warn:  h.warn.WithAttrs(attrs),
		err:   h.err.WithAttrs(attrs),
	}
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		level: h.level,
		info:  h.info.WithGroup(name),
		warn:  h.warn.WithGroup(name),
		err:   h.err.WithGroup(name),
	}
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// styledWriter renders each line written through it with a lipgloss style.
type styledWriter struct {
	w     io.Writer
	style lipgloss.Style
}

func (s *styledWriter) Write(p []byte) (int, error) {
	line := strings.TrimSuffix(string(p), "\n")
	if _, err := io.WriteString(s.w, s.style.Render(line)+"\n"); err != nil {
		return 0, err
	}
	return len(p), nil
}
