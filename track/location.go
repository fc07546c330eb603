package track

import (
	"runtime"
	"strconv"
	"strings"
)

// Location identifies the call site of an instrumented operation.
type Location struct {
	File string
	Line int
	Func string
}

// Caller returns the Location of the function skip frames above its caller.
// Caller(0) is the function calling Caller.
func Caller(skip int) Location {
	var pcs [1]uintptr
	// Skip runtime.Callers and Caller itself.
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return Location{File: "???", Func: "???"}
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	loc := Location{File: frame.File, Line: frame.Line, Func: "???"}
	if frame.Function != "" {
		loc.Func = shortFuncName(frame.Function)
	}
	return loc
}

// String formats the location as file:line.
func (l Location) String() string {
	return l.File + ":" + strconv.Itoa(l.Line)
}

// shortFuncName trims the import path from a qualified function name.
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
