// internal/logger/destination.go

package logger

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// destinationBase carries the settings every bundled destination shares:
// identifier, threshold, display toggles, date format and match filter.
type destinationBase struct {
	mu             sync.RWMutex
	owner          *Logger
	identifier     string
	outputLevel    Level
	showLogLevel   bool
	showFileName   bool
	showLineNumber bool
	dates          *dateFormatter
	matchPattern   string
	match          glob.Glob
}

func (d *destinationBase) init(owner *Logger, identifier string) {
	d.owner = owner
	d.identifier = identifier
	d.outputLevel = DEBUG
	d.showLogLevel = true
	d.showFileName = true
	d.showLineNumber = true
	d.dates = cachedFormatter(DefaultDateFormat, time.Local)
}

// Identifier returns the unique name of the destination.
func (d *destinationBase) Identifier() string {
	return d.identifier
}

// Owner returns the Logger the destination reports diagnostics to.
func (d *destinationBase) Owner() *Logger {
	return d.owner
}

func (d *destinationBase) OutputLevel() Level {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.outputLevel
}

func (d *destinationBase) SetOutputLevel(level Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outputLevel = level
}

// IsEnabledFor compares ordinals only.
func (d *destinationBase) IsEnabledFor(level Level) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return level >= d.outputLevel
}

func (d *destinationBase) ShowLogLevel() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.showLogLevel
}

func (d *destinationBase) SetShowLogLevel(show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.showLogLevel = show
}

func (d *destinationBase) ShowFileName() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.showFileName
}

func (d *destinationBase) SetShowFileName(show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.showFileName = show
}

func (d *destinationBase) ShowLineNumber() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.showLineNumber
}

func (d *destinationBase) SetShowLineNumber(show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.showLineNumber = show
}

// SetDateFormat changes the timestamp pattern (e.g. "yyyy-MM-dd HH:mm:ss.SSS")
// and the zone it is rendered in. A nil location means local time.
func (d *destinationBase) SetDateFormat(pattern string, loc *time.Location) {
	if pattern == "" {
		pattern = DefaultDateFormat
	}
	f := cachedFormatter(pattern, loc)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dates = f
}

// DateFormat returns the current timestamp pattern.
func (d *destinationBase) DateFormat() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dates.pattern
}

// SetMatch restricts regular records to those whose "file:line:function" or
// message matches the glob pattern. An empty pattern removes the filter.
func (d *destinationBase) SetMatch(pattern string) error {
	var g glob.Glob
	if pattern != "" {
		var err error
		g, err = glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid match pattern '%s' for destination '%s': %w", pattern, d.identifier, err)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.matchPattern = pattern
	d.match = g
	return nil
}

func (d *destinationBase) matches(rec *Record) bool {
	d.mu.RLock()
	g := d.match
	d.mu.RUnlock()
	if g == nil {
		return true
	}
	if g.Match(rec.file + ":" + strconv.Itoa(rec.line) + ":" + rec.function) {
		return true
	}
	return g.Match(rec.message)
}

func (d *destinationBase) renderOptions() renderOptions {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return renderOptions{
		showLogLevel:   d.showLogLevel,
		showFileName:   d.showFileName,
		showLineNumber: d.showLineNumber,
		dates:          d.dates,
	}
}

// reportInternal sends a diagnostic through the owner, skipping the
// reporting destination itself. Without an owner it goes to stderr.
func (d *destinationBase) reportInternal(self Destination, level Level, message string) {
	if d.owner != nil {
		d.owner.logInternal(level, message, self)
		return
	}
	_, _ = fmt.Fprintf(fallbackOutput, "[fanlog] %s: %s\n", level.Describe(), message)
}

func (d *destinationBase) describe(kind string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := fmt.Sprintf("%s: %s - LogLevel: %s showLogLevel: %t showFileName: %t showLineNumber: %t",
		kind, d.identifier, d.outputLevel.Describe(), d.showLogLevel, d.showFileName, d.showLineNumber)
	if d.matchPattern != "" {
		s += " match: " + d.matchPattern
	}
	return s
}
