// internal/logger/level.go

package logger

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level defines the severity of a log record. Levels are totally ordered by
// their ordinal value.
type Level int

const (
	VERBOSE Level = iota
	DEBUG
	INFO
	WARNING
	ERROR
	SEVERE
	// NONE disables all output. It is never attached to a record.
	NONE
)

// Level to label mapping
var levelNames = map[Level]string{
	VERBOSE: "Verbose",
	DEBUG:   "Debug",
	INFO:    "Info",
	WARNING: "Warning",
	ERROR:   "Error",
	SEVERE:  "Severe",
	NONE:    "None",
}

// levelByName maps lower-case names (and common aliases) to levels
var levelByName = map[string]Level{
	"verbose": VERBOSE,
	"trace":   VERBOSE,
	"debug":   DEBUG,
	"info":    INFO,
	"warning": WARNING,
	"warn":    WARNING,
	"error":   ERROR,
	"severe":  SEVERE,
	"fatal":   SEVERE,
	"none":    NONE,
	"off":     NONE,
}

// Describe returns the human-readable label of the level.
func (l Level) Describe() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) String() string {
	return l.Describe()
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive.
func ParseLevel(name string) (Level, error) {
	level, ok := levelByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return DEBUG, fmt.Errorf("invalid log level: %s", name)
	}
	return level, nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(l.Describe())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so a Level decodes from
// JSON strings, as in the admin API's level request.
func (l *Level) UnmarshalText(text []byte) error {
	level, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// UnmarshalYAML accepts a level name. The config package keeps levels as
// strings; this is for applications embedding a Level in their own YAML.
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return fmt.Errorf("log level must be a string: %w", err)
	}
	return l.UnmarshalText([]byte(name))
}
