package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/allockit/internal/script"
	"github.com/joshuapare/allockit/track"
)

// styles holds the report colors for one output stream.
type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		heading: r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("6")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

type leakInfo struct {
	Ptr  string `json:"ptr"`
	Size uint64 `json:"size"`
	File string `json:"file"`
	Line int    `json:"line"`
	Func string `json:"func"`
}

type statsInfo struct {
	Mallocs        uint64 `json:"mallocs"`
	Callocs        uint64 `json:"callocs"`
	Reallocs       uint64 `json:"reallocs"`
	Frees          uint64 `json:"frees"`
	Failures       uint64 `json:"failures"`
	UntrackedFrees uint64 `json:"untracked_frees"`
	RefusedFrees   uint64 `json:"refused_frees"`
	Dropped        uint64 `json:"dropped"`
	Live           int    `json:"live"`
	Peak           int    `json:"peak"`
}

func newStatsInfo(st track.Stats) statsInfo {
	return statsInfo{
		Mallocs:        st.Mallocs,
		Callocs:        st.Callocs,
		Reallocs:       st.Reallocs,
		Frees:          st.Frees,
		Failures:       st.Failures,
		UntrackedFrees: st.UntrackedFrees,
		RefusedFrees:   st.RefusedFrees,
		Dropped:        st.Dropped,
		Live:           st.Live,
		Peak:           st.Peak,
	}
}

type runSummary struct {
	Script      string      `json:"script"`
	Level       track.Level `json:"level"`
	Allocator   string      `json:"allocator"`
	Capacity    int         `json:"capacity"`
	Steps       int         `json:"steps"`
	Failures    int         `json:"failures"`
	Bound       []string    `json:"bound,omitempty"`
	Stats       statsInfo   `json:"stats"`
	Leaks       []leakInfo  `json:"leaks"`
	LeakedBytes uint64      `json:"leaked_bytes"`
}

func newSummary(path string, t *track.Tracker, res *script.Result, leaks []track.Record) *runSummary {
	s := &runSummary{
		Script:    path,
		Level:     t.Level(),
		Allocator: runAllocator,
		Capacity:  t.Capacity(),
		Stats:     newStatsInfo(t.Stats()),
		Leaks:     []leakInfo{},
	}
	if res != nil {
		s.Steps = res.Steps
		s.Failures = res.Failures
		s.Bound = res.Bound
	}
	for _, r := range leaks {
		s.Leaks = append(s.Leaks, leakInfo{
			Ptr:  fmt.Sprintf("%p", r.Ptr),
			Size: uint64(r.Size),
			File: r.File,
			Line: r.Line,
			Func: r.Func,
		})
		s.LeakedBytes += uint64(r.Size)
	}
	return s
}

// printSummary writes s to w as text.
func printSummary(w io.Writer, s *runSummary) {
	st := newStyles(w)
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "%s %s %s\n",
		st.heading.Render("Run summary:"), s.Script,
		st.muted.Render(fmt.Sprintf("(level=%s, allocator=%s)", s.Level, s.Allocator)))
	fmt.Fprintf(w, "  %s %d\n", st.label.Render("Steps:    "), s.Steps)
	fmt.Fprintf(w, "  %s %d\n", st.label.Render("Failures: "), s.Failures)

	if s.Level.Logs() {
		fmt.Fprintf(w, "  %s malloc=%d calloc=%d realloc=%d free=%d\n",
			st.label.Render("Calls:    "),
			s.Stats.Mallocs, s.Stats.Callocs, s.Stats.Reallocs, s.Stats.Frees)
	}
	if verbose {
		fmt.Fprintf(w, "  %s untracked=%d refused=%d dropped=%d peak=%d/%d\n",
			st.label.Render("Registry: "),
			s.Stats.UntrackedFrees, s.Stats.RefusedFrees, s.Stats.Dropped, s.Stats.Peak, s.Capacity)
	}

	if !s.Level.Tracks() {
		fmt.Fprintf(w, "%s\n", st.muted.Render("Leak tracking disabled at this level"))
		return
	}
	if len(s.Leaks) == 0 {
		fmt.Fprintf(w, "%s\n", st.ok.Render("No leaks detected"))
		return
	}
	fmt.Fprintf(w, "%s\n", st.warn.Render(
		p.Sprintf("Leaks: %d allocations, %d bytes", len(s.Leaks), s.LeakedBytes)))
	for _, l := range s.Leaks {
		fmt.Fprintf(w, "  %-18s %14s  %s:%d (%s)\n",
			l.Ptr, p.Sprintf("%d bytes", l.Size), l.File, l.Line, l.Func)
	}
	if s.Stats.Dropped > 0 {
		fmt.Fprintf(w, "%s\n", st.muted.Render(
			p.Sprintf("%d allocations were not recorded because the registry was full", s.Stats.Dropped)))
	}
}
