// internal/logger/interface.go

package logger

// Destination defines the interface for all log sinks.
// Each destination type (console, file, gelf) implements this interface and
// new sink types plug in without changes to Logger.
type Destination interface {
	// Identifier returns the key that is unique within a Logger.
	Identifier() string

	// OutputLevel returns the minimum level this destination writes.
	OutputLevel() Level

	// SetOutputLevel changes the minimum level.
	SetOutputLevel(level Level)

	// IsEnabledFor reports whether a record at level would be written.
	IsEnabledFor(level Level) bool

	// ProcessRecord renders and writes a record including its call site.
	// The caller has already checked IsEnabledFor.
	ProcessRecord(record *Record)

	// ProcessInternalRecord renders and writes a record the framework emits
	// about itself, without function, file or line information.
	ProcessInternalRecord(record *Record)

	// Close releases the sink. Records arriving afterwards are dropped.
	Close() error

	// String describes the destination and its settings.
	String() string
}

// Flusher is implemented by destinations that write asynchronously.
type Flusher interface {
	// Flush blocks until every record accepted so far has been written.
	Flush()
}
