package track

import "log/slog"

// Leaks returns the records still held, in registry order. It reports
// nothing below LevelTrack.
func (t *Tracker) Leaks() []Record {
	if !t.level.Tracks() {
		return nil
	}
	return t.reg.Records()
}

// Close emits the leak report and returns the leaked records.
//
// Only the first call reports; later calls return nil. The report is produced
// at LevelTrack and above when the registry is non-empty: one warning with the
// leak count, then one warning per record. Leaked memory is not freed.
func (t *Tracker) Close() []Record {
	if t.closed {
		return nil
	}
	t.closed = true

	leaks := t.Leaks()
	if len(leaks) == 0 {
		return nil
	}
	t.log.Warn("allocations not freed", slog.Int("count", len(leaks)))
	for _, r := range leaks {
		loc := Location{File: r.File, Line: r.Line, Func: r.Func}
		t.log.Warn("leak", ptrAttr("ptr", r.Ptr), sizeAttr(r.Size), atAttr(loc), funcAttr(loc))
	}
	return leaks
}

// Closed reports whether Close has run.
func (t *Tracker) Closed() bool { return t.closed }
