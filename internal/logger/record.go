// internal/logger/record.go

package logger

import (
	"runtime"
	"strings"
	"time"
)

// now is replaced in tests to get deterministic timestamps.
var now = time.Now

// Site describes where a log call was made. Any field may be empty.
type Site struct {
	Function string
	File     string
	Line     int
}

// Caller captures the Site of the function skip frames above the caller of
// Caller. Caller(0) describes the function that called Caller.
func Caller(skip int) Site {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Site{}
	}
	site := Site{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		site.Function = shortFuncName(fn.Name())
	}
	return site
}

// shortFuncName strips the package path, receiver and type parameters from
// a runtime function name, keeping closure suffixes:
//
//	"pkg/path.(*T).Save"       -> "Save"
//	"pkg/path.T.Save"          -> "Save"
//	"pkg/path.Map[...]"        -> "Map"
//	"pkg/path.Run.func1"       -> "Run.func1"
//	"pkg/path.(*T).Save.func2" -> "Save.func2"
//
// The runtime escapes dots in the last path element, so the first dot after
// the last slash ends the package name.
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "[...]", "")

	parts := strings.Split(name, ".")
	k := len(parts) - 1
	for k > 0 && isClosureSegment(parts[k]) {
		k--
	}
	return strings.Join(parts[k:], ".")
}

// isClosureSegment reports compiler generated name parts such as "func1",
// "2" (nested closure), "gowrap1" and "deferwrap1".
func isClosureSegment(s string) bool {
	for _, prefix := range []string{"func", "gowrap", "deferwrap"} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	if s == "" {
		return true
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Record is an immutable snapshot of one log event. It is built once per log
// call and shared by every destination that receives it.
type Record struct {
	level    Level
	time     time.Time
	message  string
	function string
	file     string
	line     int
}

// NewRecord builds a record stamped with the current wall-clock time.
func NewRecord(level Level, message string, site Site) *Record {
	return &Record{
		level:    level,
		time:     now(),
		message:  message,
		function: site.Function,
		file:     site.File,
		line:     site.Line,
	}
}

func (r *Record) Level() Level { return r.level }
func (r *Record) Time() time.Time { return r.time }
func (r *Record) Message() string { return r.message }
func (r *Record) Function() string { return r.function }
func (r *Record) File() string { return r.file }
func (r *Record) Line() int { return r.line }
func (r *Record) Site() Site { return Site{Function: r.function, File: r.file, Line: r.line} }
