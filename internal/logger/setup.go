// internal/logger/setup.go

package logger

import "time"

// Options is the one-call configuration of the built-in destinations.
type Options struct {
	Level           Level
	ShowLogLevel    bool
	ShowFileNames   bool
	ShowLineNumbers bool
	// WriteToFile, when set, adds a file destination writing to this path.
	WriteToFile string
	// DateFormat and Location replace the timestamp settings when either is
	// set. They apply before the file is opened, so its banner uses them.
	DateFormat string
	Location   *time.Location
}

// DefaultOptions returns Debug level with every display toggle on.
func DefaultOptions() Options {
	return Options{
		Level:           DEBUG,
		ShowLogLevel:    true,
		ShowFileNames:   true,
		ShowLineNumbers: true,
	}
}

// Setup sets the global level, configures the console destination with the
// display toggles, writes the startup banner and optionally registers a file
// destination configured the same way.
func (l *Logger) Setup(opts Options) {
	l.SetOutputLevel(opts.Level)

	if console, ok := l.Destination(ConsoleDestinationID).(*ConsoleDestination); ok {
		applyOptions(&console.destinationBase, opts)
	}

	l.LogAppDetails(nil)

	if opts.WriteToFile == "" {
		return
	}
	if existing, ok := l.Destination(FileDestinationID).(*FileDestination); ok {
		applyOptions(&existing.destinationBase, opts)
		if existing.Path() != opts.WriteToFile || !existing.IsOpen() {
			_ = existing.SetPath(opts.WriteToFile)
		}
		return
	}
	// open after the toggles are applied so the banner is rendered with them
	file := NewFileDestination(l, "", FileDestinationID)
	applyOptions(&file.destinationBase, opts)
	_ = file.SetPath(opts.WriteToFile)
	if !l.AddDestination(file) {
		_ = file.Close()
	}
}

func applyOptions(d *destinationBase, opts Options) {
	d.SetOutputLevel(opts.Level)
	d.SetShowLogLevel(opts.ShowLogLevel)
	d.SetShowFileName(opts.ShowFileNames)
	d.SetShowLineNumber(opts.ShowLineNumbers)
	if opts.DateFormat != "" || opts.Location != nil {
		d.SetDateFormat(opts.DateFormat, opts.Location)
	}
}
