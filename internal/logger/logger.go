// internal/logger/logger.go

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/orgoj/fanlog/internal/version"
)

// Identifiers of the destinations the Logger manages itself
const (
	DefaultInstanceID    = "fanlog.defaultInstance"
	ConsoleDestinationID = "fanlog.destination.console"
	FileDestinationID    = "fanlog.destination.file"
)

// Logger fans each log call out to an ordered set of destinations.
type Logger struct {
	mu           sync.RWMutex
	identifier   string
	outputLevel  Level
	destinations []Destination
}

// New creates a Logger with a console destination writing to os.Stdout.
func New() *Logger {
	return NewWithConsoleWriter(os.Stdout)
}

// NewWithConsoleWriter creates a Logger whose pre-registered console
// destination writes to w.
func NewWithConsoleWriter(w io.Writer) *Logger {
	l := &Logger{outputLevel: DEBUG}
	l.AddDestination(NewConsoleDestinationWithWriter(l, ConsoleDestinationID, w))
	return l
}

// Identifier returns the name of the logger.
func (l *Logger) Identifier() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.identifier
}

// SetIdentifier names the logger.
func (l *Logger) SetIdentifier(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.identifier = identifier
}

// OutputLevel returns the global threshold.
func (l *Logger) OutputLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.outputLevel
}

// SetOutputLevel sets the global threshold and overwrites the threshold of
// every registered destination.
func (l *Logger) SetOutputLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputLevel = level
	for _, d := range l.destinations {
		d.SetOutputLevel(level)
	}
}

// IsEnabledFor compares level against the global threshold.
func (l *Logger) IsEnabledFor(level Level) bool {
	return level >= l.OutputLevel()
}

// Destination returns the destination registered under identifier, or nil.
func (l *Logger) Destination(identifier string) Destination {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.findLocked(identifier)
}

func (l *Logger) findLocked(identifier string) Destination {
	for _, d := range l.destinations {
		if d.Identifier() == identifier {
			return d
		}
	}
	return nil
}

// Destinations returns the registered destinations in registration order.
func (l *Logger) Destinations() []Destination {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Destination, len(l.destinations))
	copy(out, l.destinations)
	return out
}

// DestinationCount returns the number of registered destinations.
func (l *Logger) DestinationCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.destinations)
}

// AddDestination appends d unless its identifier is already registered, in
// which case the set is left unchanged and false is returned.
func (l *Logger) AddDestination(d Destination) bool {
	if d == nil {
		return false
	}
	l.mu.Lock()
	if l.findLocked(d.Identifier()) != nil {
		l.mu.Unlock()
		l.logInternal(WARNING, fmt.Sprintf("Destination '%s' is already registered, not adding it again", d.Identifier()), nil)
		return false
	}
	l.destinations = append(l.destinations, d)
	l.mu.Unlock()
	return true
}

// RemoveDestination removes the destination with d's identifier. The
// destination is not closed.
func (l *Logger) RemoveDestination(d Destination) {
	if d == nil {
		return
	}
	l.RemoveDestinationByID(d.Identifier())
}

// RemoveDestinationByID removes the destination registered under
// identifier. Unknown identifiers are ignored.
func (l *Logger) RemoveDestinationByID(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.destinations[:0]
	for _, d := range l.destinations {
		if d.Identifier() != identifier {
			kept = append(kept, d)
		}
	}
	// clear the tail so removed destinations can be collected
	for i := len(kept); i < len(l.destinations); i++ {
		l.destinations[i] = nil
	}
	l.destinations = kept
}

// Log dispatches message to every destination enabled for level. The record
// is only built if at least one destination wants it.
func (l *Logger) Log(level Level, message string, site Site) {
	if level >= NONE {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	var record *Record
	for _, d := range l.destinations {
		if !d.IsEnabledFor(level) {
			continue
		}
		if record == nil {
			record = NewRecord(level, message, site)
		}
		d.ProcessRecord(record)
	}
}

// anyEnabled reports whether some destination would accept level.
func (l *Logger) anyEnabled(level Level) bool {
	if level >= NONE {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, d := range l.destinations {
		if d.IsEnabledFor(level) {
			return true
		}
	}
	return false
}

// logf formats and logs a message if the level is enabled somewhere. skip
// counts frames above logf: 1 is its caller, 2 the caller's caller.
func (l *Logger) logf(skip int, level Level, format string, args ...interface{}) {
	if !l.anyEnabled(level) {
		return
	}
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	l.Log(level, message, Caller(skip))
}

// Logf logs a formatted message at level, attributed to the caller.
func (l *Logger) Logf(level Level, format string, args ...interface{}) {
	l.logf(2, level, format, args...)
}

// Verbose logs a message at Verbose level
func (l *Logger) Verbose(format string, args ...interface{}) {
	l.logf(2, VERBOSE, format, args...)
}

// Debug logs a message at Debug level
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(2, DEBUG, format, args...)
}

// Info logs a message at Info level
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(2, INFO, format, args...)
}

// Warning logs a message at Warning level
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logf(2, WARNING, format, args...)
}

// Error logs a message at Error level
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(2, ERROR, format, args...)
}

// Severe logs a message at Severe level
func (l *Logger) Severe(format string, args ...interface{}) {
	l.logf(2, SEVERE, format, args...)
}

// Exec runs fn only if the logger is enabled for level. Use it to skip
// expensive diagnostics that would be filtered out anyway.
func (l *Logger) Exec(level Level, fn func()) {
	if fn == nil || !l.IsEnabledFor(level) {
		return
	}
	fn()
}

func (l *Logger) VerboseExec(fn func()) { l.Exec(VERBOSE, fn) }
func (l *Logger) DebugExec(fn func()) { l.Exec(DEBUG, fn) }
func (l *Logger) InfoExec(fn func()) { l.Exec(INFO, fn) }
func (l *Logger) WarningExec(fn func()) { l.Exec(WARNING, fn) }
func (l *Logger) ErrorExec(fn func()) { l.Exec(ERROR, fn) }
func (l *Logger) SevereExec(fn func()) { l.Exec(SEVERE, fn) }

// LogAppDetails writes the startup banner (process and framework identity)
// to d, or to every destination when d is nil. Each destination only
// receives it if it is enabled for Info.
func (l *Logger) LogAppDetails(d Destination) {
	l.mu.RLock()
	level := l.outputLevel
	var targets []Destination
	if d != nil {
		targets = []Destination{d}
	} else {
		targets = append(targets, l.destinations...)
	}
	l.mu.RUnlock()

	records := []*Record{
		NewRecord(INFO, processDetails(), Site{}),
		NewRecord(INFO, fmt.Sprintf("fanlog Version: %s - LogLevel: %s", version.Version, level.Describe()), Site{}),
	}
	for _, target := range targets {
		if !target.IsEnabledFor(INFO) {
			continue
		}
		for _, record := range records {
			target.ProcessInternalRecord(record)
		}
	}
}

// processDetails describes the running binary: "<name> Version: v Build: rev PID: n".
func processDetails() string {
	var sb strings.Builder
	sb.WriteString(filepath.Base(os.Args[0]))
	sb.WriteByte(' ')
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			sb.WriteString("Version: " + v + " ")
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				sb.WriteString("Build: " + setting.Value + " ")
				break
			}
		}
	}
	sb.WriteString(fmt.Sprintf("PID: %d", os.Getpid()))
	return sb.String()
}

// logInternal emits a diagnostic about the framework itself to every enabled
// destination except skip.
func (l *Logger) logInternal(level Level, message string, skip Destination) {
	if level >= NONE {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	var record *Record
	for _, d := range l.destinations {
		if d == skip || !d.IsEnabledFor(level) {
			continue
		}
		if record == nil {
			record = NewRecord(level, message, Site{})
		}
		d.ProcessInternalRecord(record)
	}
}

// logInternalRecord forwards an already built internal record, unfiltered by
// the caller, to every enabled destination except skip.
func (l *Logger) logInternalRecord(record *Record, skip Destination) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, d := range l.destinations {
		if d == skip || !d.IsEnabledFor(record.level) {
			continue
		}
		d.ProcessInternalRecord(record)
	}
}

// Flush waits until every asynchronous destination has written what it
// accepted so far.
func (l *Logger) Flush() {
	for _, d := range l.Destinations() {
		if f, ok := d.(Flusher); ok {
			f.Flush()
		}
	}
}

// Close flushes and closes every destination. The destinations stay
// registered but drop further records.
func (l *Logger) Close() error {
	var errs []error
	for _, d := range l.Destinations() {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("destination '%s': %w", d.Identifier(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close some destinations: %v", errs)
	}
	return nil
}

func (l *Logger) String() string {
	var sb strings.Builder
	sb.WriteString("Logger: " + l.Identifier() + " - destinations:\n")
	for _, d := range l.Destinations() {
		sb.WriteString("\t" + d.String() + "\n")
	}
	return sb.String()
}
