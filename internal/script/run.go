package script

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/joshuapare/allockit/track"
)

// Result summarizes a completed run.
type Result struct {
	Steps    int      // statements executed
	Failures int      // allocating statements that returned nil
	Bound    []string // names still holding a pointer, sorted
}

// Run executes prog against t. Each statement is attributed to the script
// path, its line and its verb.
//
// A name rebound by alloc, calloc or stray loses its previous pointer, which
// stays allocated. free unbinds the name whether or not the tracker let the
// release through.
func Run(t *track.Tracker, prog *Program) (*Result, error) {
	names := make(map[string]unsafe.Pointer)
	res := &Result{}

	bind := func(name string, p unsafe.Pointer) {
		if p == nil {
			res.Failures++
			delete(names, name)
			return
		}
		names[name] = p
	}

	for _, op := range prog.Ops {
		loc := track.Location{File: prog.Path, Line: op.Line, Func: string(op.Verb)}

		switch op.Verb {
		case VerbAlloc:
			bind(op.Name, t.MallocAt(op.Args[0], loc))
		case VerbCalloc:
			bind(op.Name, t.CallocAt(op.Args[0], op.Args[1], loc))
		case VerbStray:
			bind(op.Name, t.Underlying().Malloc(op.Args[0]))
		case VerbRealloc:
			old, ok := names[op.Name]
			if !ok {
				return res, unknownName(prog.Path, op)
			}
			if p := t.ReallocAt(old, op.Args[0], loc); p != nil {
				names[op.Name] = p
			} else {
				// The old block is still valid.
				res.Failures++
			}
		case VerbFree:
			old, ok := names[op.Name]
			if !ok {
				return res, unknownName(prog.Path, op)
			}
			t.FreeAt(old, loc)
			delete(names, op.Name)
		}
		res.Steps++
	}

	for name := range names {
		res.Bound = append(res.Bound, name)
	}
	sort.Strings(res.Bound)
	return res, nil
}

func unknownName(path string, op Op) error {
	return fmt.Errorf("%s:%d: %w: %s %q", path, op.Line, ErrUnknownName, op.Verb, op.Name)
}
