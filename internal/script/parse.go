// Package script parses and runs allocation scenario scripts.
//
// A script is a sequence of lines, each holding one statement. Blank lines
// and text after '#' are ignored.
//
//	version 1.0
//	alloc   buf  64      # malloc(64), bound to "buf"
//	calloc  tbl  16 8    # calloc(16, 8)
//	realloc buf  128
//	free    tbl
//	stray   raw  32      # allocated behind the tracker's back
//	free    raw
//
// Numbers accept Go integer syntax, so 0x100 and 1_024 both work.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SupportedVersions is the constraint a version directive must satisfy.
const SupportedVersions = "^1"

// Verb names a script statement.
type Verb string

const (
	VerbAlloc   Verb = "alloc"
	VerbCalloc  Verb = "calloc"
	VerbRealloc Verb = "realloc"
	VerbFree    Verb = "free"
	VerbStray   Verb = "stray"
)

// arity is the number of numeric arguments after the name.
var arity = map[Verb]int{
	VerbAlloc:   1,
	VerbCalloc:  2,
	VerbRealloc: 1,
	VerbFree:    0,
	VerbStray:   1,
}

// Op is one parsed statement.
type Op struct {
	Verb Verb
	Name string
	Args []uintptr
	Line int
}

// Program is a parsed script.
type Program struct {
	Path    string
	Version *semver.Version // nil when the script has no version directive
	Ops     []Op
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a script from r. The path is used for error messages and as
// the file of every call site.
func Parse(r io.Reader, path string) (*Program, error) {
	prog := &Program{Path: path}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if strings.EqualFold(fields[0], "version") {
			if len(prog.Ops) > 0 || prog.Version != nil {
				return nil, syntaxErr(path, lineNo, "version must be the first statement")
			}
			v, err := parseVersion(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			prog.Version = v
			continue
		}

		op, err := parseOp(fields)
		if err != nil {
			return nil, syntaxErr(path, lineNo, err.Error())
		}
		op.Line = lineNo
		prog.Ops = append(prog.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

func parseVersion(args []string) (*semver.Version, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: version takes one argument", ErrSyntax)
	}
	v, err := semver.NewVersion(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad version %q: %v", ErrSyntax, args[0], err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, err
	}
	if !c.Check(v) {
		return nil, fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return v, nil
}

func parseOp(fields []string) (Op, error) {
	verb := Verb(strings.ToLower(fields[0]))
	n, ok := arity[verb]
	if !ok {
		return Op{}, fmt.Errorf("unknown statement %q", fields[0])
	}
	if len(fields) != n+2 {
		return Op{}, fmt.Errorf("%s takes a name and %d number(s), got %d field(s)", verb, n, len(fields)-1)
	}
	op := Op{Verb: verb, Name: fields[1]}
	for _, f := range fields[2:] {
		v, err := strconv.ParseUint(f, 0, 64)
		if err != nil {
			return Op{}, fmt.Errorf("bad number %q", f)
		}
		op.Args = append(op.Args, uintptr(v))
	}
	return op, nil
}

func syntaxErr(path string, line int, msg string) error {
	return fmt.Errorf("%s:%d: %w: %s", path, line, ErrSyntax, msg)
}
