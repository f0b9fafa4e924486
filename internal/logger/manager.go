// internal/logger/manager.go

package logger

import (
	"fmt"
	"time"

	"github.com/orgoj/fanlog/internal/config"
)

// FromConfig creates a Logger and applies cfg to it. The returned Logger is
// usable even when an error is returned; failing destinations are skipped.
func FromConfig(cfg *config.Config) (*Logger, error) {
	l := New()
	err := l.ApplyConfig(cfg)
	return l, err
}

// ApplyConfig configures the built-in destinations like Setup and registers
// every enabled destination of cfg.Destinations.
func (l *Logger) ApplyConfig(cfg *config.Config) error {
	var initErrors []error

	level := DEBUG
	if cfg.Logging.Level != "" {
		parsed, err := ParseLevel(cfg.Logging.Level)
		if err != nil {
			initErrors = append(initErrors, fmt.Errorf("logging.level: %w", err))
		} else {
			level = parsed
		}
	}

	loc := location(cfg.Logging.UTC)
	if console, ok := l.Destination(ConsoleDestinationID).(*ConsoleDestination); ok {
		console.SetColorize(cfg.Logging.Colorize)
	}

	l.Setup(Options{
		Level:           level,
		ShowLogLevel:    config.BoolValue(cfg.Logging.ShowLogLevel, true),
		ShowFileNames:   config.BoolValue(cfg.Logging.ShowFileNames, true),
		ShowLineNumbers: config.BoolValue(cfg.Logging.ShowLineNumbers, true),
		WriteToFile:     cfg.Logging.WriteToFile,
		DateFormat:      cfg.Logging.DateFormat,
		Location:        loc,
	})

	for _, dest := range cfg.Destinations {
		if !dest.Enabled {
			continue
		}

		d, err := NewDestinationFromConfig(l, dest, level)
		if err != nil {
			l.logInternal(ERROR, fmt.Sprintf("Failed to initialize destination '%s' (type: %s): %v", dest.Name, dest.Type, err), nil)
			initErrors = append(initErrors, fmt.Errorf("dest '%s': %w", dest.Name, err))
			continue
		}
		if !l.AddDestination(d) {
			_ = d.Close()
			initErrors = append(initErrors, fmt.Errorf("dest '%s': identifier already registered", dest.Name))
			continue
		}
		l.logInternal(DEBUG, fmt.Sprintf("Initialized destination '%s' (type: %s)", dest.Name, dest.Type), nil)
	}

	if len(initErrors) > 0 {
		return fmt.Errorf("failed to initialize some destinations: %v", initErrors)
	}
	return nil
}

// NewDestinationFromConfig builds one destination owned by l. An empty level
// in dest falls back to defaultLevel.
func NewDestinationFromConfig(l *Logger, dest config.LogDestination, defaultLevel Level) (Destination, error) {
	level := defaultLevel
	if dest.Level != "" {
		parsed, err := ParseLevel(dest.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var base *destinationBase
	var d Destination
	switch dest.Type {
	case "console":
		c := NewConsoleDestination(l, dest.Name)
		c.SetColorize(dest.Colorize)
		base, d = &c.destinationBase, c
	case "file":
		if dest.Path == "" {
			return nil, fmt.Errorf("path is required for file destination")
		}
		f := NewFileDestination(l, "", dest.Name)
		base, d = &f.destinationBase, f
	case "gelf":
		g := NewGelfDestination(l, dest.Name, GelfOptions{
			Host:            dest.Host,
			Port:            dest.Port,
			Protocol:        dest.Protocol,
			CompressionType: dest.CompressionType,
		})
		if !g.IsConnected() {
			_ = g.Close()
			return nil, fmt.Errorf("failed to connect to %s", g.Address())
		}
		base, d = &g.destinationBase, g
	default:
		return nil, fmt.Errorf("unsupported destination type: %s", dest.Type)
	}

	base.SetOutputLevel(level)
	base.SetShowLogLevel(config.BoolValue(dest.ShowLogLevel, true))
	base.SetShowFileName(config.BoolValue(dest.ShowFileNames, true))
	base.SetShowLineNumber(config.BoolValue(dest.ShowLineNumbers, true))
	base.SetDateFormat(dest.DateFormat, location(dest.UTC))
	if err := base.SetMatch(dest.Match); err != nil {
		_ = d.Close()
		return nil, err
	}

	// the file is opened last so its banner uses the configured format
	if f, ok := d.(*FileDestination); ok {
		if err := f.SetPath(dest.Path); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return d, nil
}

func location(utc bool) *time.Location {
	if utc {
		return time.UTC
	}
	return time.Local
}
