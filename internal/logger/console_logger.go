// internal/logger/console_logger.go

package logger

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ConsoleDestination writes rendered records to standard output (or any
// writer) through its own ordered queue.
type ConsoleDestination struct {
	destinationBase
	writer   io.Writer
	terminal bool
	colorize bool
	queue    *writeQueue
}

// NewConsoleDestination creates a destination writing to os.Stdout.
func NewConsoleDestination(owner *Logger, identifier string) *ConsoleDestination {
	return NewConsoleDestinationWithWriter(owner, identifier, os.Stdout)
}

// NewConsoleDestinationWithWriter creates a console destination writing to w.
func NewConsoleDestinationWithWriter(owner *Logger, identifier string, w io.Writer) *ConsoleDestination {
	c := &ConsoleDestination{
		writer:   w,
		terminal: isTerminal(w),
		queue:    newWriteQueue(identifier),
	}
	c.init(owner, identifier)
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorize enables ANSI colors on the level segment. Colors are only
// emitted when the writer is a terminal.
func (c *ConsoleDestination) SetColorize(colorize bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colorize = colorize
}

// Colorize reports whether colored output is actually produced.
func (c *ConsoleDestination) Colorize() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.colorize && c.terminal
}

func (c *ConsoleDestination) options() renderOptions {
	o := c.renderOptions()
	o.colorize = c.Colorize()
	return o
}

func (c *ConsoleDestination) ProcessRecord(record *Record) {
	if !c.matches(record) {
		return
	}
	c.write(renderRecord(record, c.options()))
}

func (c *ConsoleDestination) ProcessInternalRecord(record *Record) {
	c.write(renderInternal(record, c.options()))
}

func (c *ConsoleDestination) write(line string) {
	c.queue.enqueue(func() error {
		_, err := io.WriteString(c.writer, line)
		return err
	})
}

// Flush waits until queued lines are written.
func (c *ConsoleDestination) Flush() {
	c.queue.flush()
}

// Close drains the queue. The underlying writer is left open.
func (c *ConsoleDestination) Close() error {
	c.queue.close()
	return nil
}

func (c *ConsoleDestination) String() string {
	return c.describe("ConsoleDestination")
}

// Ensure ConsoleDestination implements the Destination interface.
var _ Destination = (*ConsoleDestination)(nil)
var _ Flusher = (*ConsoleDestination)(nil)
