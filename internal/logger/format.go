// internal/logger/format.go

package logger

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vjeantet/jodaTime"
)

// DefaultDateFormat is the timestamp pattern used by every destination unless
// changed with SetDateFormat.
const DefaultDateFormat = "yyyy-MM-dd HH:mm:ss.SSS"

// dateFormatter renders times with a Joda style pattern such as
// "yyyy-MM-dd HH:mm:ss.SSS" in a fixed location. Text inside single quotes is
// literal.
type dateFormatter struct {
	pattern  string
	location *time.Location
}

var formatterCache = struct {
	sync.Mutex
	m map[string]*dateFormatter
}{m: make(map[string]*dateFormatter)}

// cachedFormatter returns the shared formatter for pattern and location.
func cachedFormatter(pattern string, loc *time.Location) *dateFormatter {
	if loc == nil {
		loc = time.Local
	}
	key := pattern + "_" + loc.String()

	formatterCache.Lock()
	defer formatterCache.Unlock()
	if f, ok := formatterCache.m[key]; ok {
		return f
	}
	f := &dateFormatter{pattern: pattern, location: loc}
	formatterCache.m[key] = f
	return f
}

// Format renders t in the formatter's location.
func (f *dateFormatter) Format(t time.Time) string {
	return jodaTime.Format(f.pattern, t.In(f.location))
}

// ANSI sequences for the optional colored level segment
const (
	ansiReset = "\x1b[0m"
)

var levelColors = map[Level]string{
	VERBOSE: "\x1b[1;36m",
	DEBUG:   "\x1b[1;34m",
	INFO:    "\x1b[1;32m",
	WARNING: "\x1b[1;33m",
	ERROR:   "\x1b[1;31m",
	SEVERE:  "\x1b[1;41m",
}

// renderOptions is a snapshot of a destination's display settings.
type renderOptions struct {
	showLogLevel   bool
	showFileName   bool
	showLineNumber bool
	colorize       bool
	dates          *dateFormatter
}

func (o renderOptions) levelSegment(level Level) string {
	if o.colorize {
		if color, ok := levelColors[level]; ok {
			return "[" + color + level.Describe() + ansiReset + "]"
		}
	}
	return "[" + level.Describe() + "]"
}

// baseFileName reduces a path to its last segment, accepting either separator.
func baseFileName(file string) string {
	if i := strings.LastIndexAny(file, `/\`); i >= 0 {
		return file[i+1:]
	}
	return file
}

// renderRecord produces "<ts> [Level] [file:line] function: message\n".
func renderRecord(rec *Record, o renderOptions) string {
	var sb strings.Builder
	sb.WriteString(o.dates.Format(rec.time))
	sb.WriteByte(' ')

	if o.showLogLevel {
		sb.WriteString(o.levelSegment(rec.level))
		sb.WriteByte(' ')
	}

	if o.showFileName {
		sb.WriteByte('[')
		sb.WriteString(baseFileName(rec.file))
		if o.showLineNumber {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(rec.line))
		}
		sb.WriteString("] ")
	} else if o.showLineNumber {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(rec.line))
		sb.WriteString("] ")
	}

	sb.WriteString(rec.function)
	sb.WriteString(": ")
	sb.WriteString(rec.message)
	sb.WriteByte('\n')
	return sb.String()
}

// renderInternal produces "<ts> [Level]: message\n", leaving out the call
// site for records the framework emits about itself.
func renderInternal(rec *Record, o renderOptions) string {
	var sb strings.Builder
	sb.WriteString(o.dates.Format(rec.time))
	if o.showLogLevel {
		sb.WriteByte(' ')
		sb.WriteString(o.levelSegment(rec.level))
	}
	sb.WriteString(": ")
	sb.WriteString(rec.message)
	sb.WriteByte('\n')
	return sb.String()
}
