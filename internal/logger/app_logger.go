// internal/logger/app_logger.go

package logger

import "sync"

// Global instance
var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the process-wide Logger, creating it on first use. Prefer
// passing a *Logger explicitly; the default instance is meant for the
// outermost layer of a program.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New()
		defaultLogger.SetIdentifier(DefaultInstanceID)
	})
	return defaultLogger
}

// Setup configures the default instance. See Logger.Setup.
func Setup(opts Options) {
	Default().Setup(opts)
}

// Log methods for the default instance

// Verbose logs a message at Verbose level on the default instance
func Verbose(format string, args ...interface{}) {
	Default().logf(2, VERBOSE, format, args...)
}

// Debug logs a message at Debug level on the default instance
func Debug(format string, args ...interface{}) {
	Default().logf(2, DEBUG, format, args...)
}

// Info logs a message at Info level on the default instance
func Info(format string, args ...interface{}) {
	Default().logf(2, INFO, format, args...)
}

// Warning logs a message at Warning level on the default instance
func Warning(format string, args ...interface{}) {
	Default().logf(2, WARNING, format, args...)
}

// Error logs a message at Error level on the default instance
func Error(format string, args ...interface{}) {
	Default().logf(2, ERROR, format, args...)
}

// Severe logs a message at Severe level on the default instance
func Severe(format string, args ...interface{}) {
	Default().logf(2, SEVERE, format, args...)
}

// Exec runs fn if the default instance is enabled for level.
func Exec(level Level, fn func()) {
	Default().Exec(level, fn)
}
