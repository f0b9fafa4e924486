// internal/logger/file_logger.go

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// FileDestination writes rendered records to a file. The file is truncated
// when opened; lines are appended to the open handle afterwards.
type FileDestination struct {
	destinationBase

	fileMu sync.Mutex // serializes open/close of the handle
	path   string
	file   *os.File // nil while closed or after a failed open
	closed bool

	queue *writeQueue
}

// NewFileDestination creates a destination and opens path synchronously. If
// the file cannot be opened the failure is reported through owner and the
// destination stays inert until SetPath succeeds.
func NewFileDestination(owner *Logger, path string, identifier string) *FileDestination {
	d := &FileDestination{
		queue: newWriteQueue(identifier),
	}
	d.init(owner, identifier)
	if path != "" {
		_ = d.SetPath(path)
	}
	return d
}

// Path returns the current target, even if it failed to open.
func (d *FileDestination) Path() string {
	d.fileMu.Lock()
	defer d.fileMu.Unlock()
	return d.path
}

// IsOpen reports whether the destination currently holds a file handle.
func (d *FileDestination) IsOpen() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.file != nil
}

// SetPath retargets the destination: pending writes to the previous file
// are flushed, its handle is closed, and path is created or truncated.
func (d *FileDestination) SetPath(path string) error {
	d.fileMu.Lock()
	defer d.fileMu.Unlock()

	if d.closed {
		return errors.New("file destination is closed")
	}

	if err := d.detachFile(); err != nil {
		d.reportInternal(d, WARNING, fmt.Sprintf("Closing log file %s failed: %v", d.path, err))
	}
	d.path = path

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		d.reportInternal(d, ERROR, fmt.Sprintf("Attempt to open log file for writing failed: %v", err))
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	d.mu.Lock()
	d.file = file
	d.mu.Unlock()

	if d.owner != nil {
		d.owner.LogAppDetails(d)
	}
	record := NewRecord(INFO, "fanlog writing log to: "+path, Site{})
	if d.owner != nil {
		d.owner.logInternalRecord(record, d)
	}
	d.ProcessInternalRecord(record)
	return nil
}

// detachFile stops new writes, drains queued ones and closes the handle.
// fileMu must be held.
func (d *FileDestination) detachFile() error {
	d.mu.Lock()
	file := d.file
	d.file = nil
	d.mu.Unlock()

	if file == nil {
		return nil
	}
	d.queue.flush()
	return file.Close()
}

func (d *FileDestination) ProcessRecord(record *Record) {
	if !d.matches(record) {
		return
	}
	d.write(renderRecord(record, d.renderOptions()))
}

func (d *FileDestination) ProcessInternalRecord(record *Record) {
	d.write(renderInternal(record, d.renderOptions()))
}

func (d *FileDestination) write(line string) {
	// hold the read lock until the job is queued so detachFile cannot close
	// the handle ahead of it
	d.mu.RLock()
	defer d.mu.RUnlock()
	file := d.file
	if file == nil {
		return
	}
	d.queue.enqueue(func() error {
		if _, err := io.WriteString(file, line); err != nil {
			return fmt.Errorf("failed to write log line: %w", err)
		}
		return nil
	})
}

// Flush waits until queued lines reach the file.
func (d *FileDestination) Flush() {
	d.queue.flush()
}

// Close flushes pending lines and closes the file handle.
func (d *FileDestination) Close() error {
	d.fileMu.Lock()
	defer d.fileMu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.detachFile()
	d.queue.close()
	return err
}

func (d *FileDestination) String() string {
	return d.describe("FileDestination") + " path: " + d.Path()
}

// Ensure FileDestination implements the Destination interface.
var _ Destination = (*FileDestination)(nil)
var _ Flusher = (*FileDestination)(nil)
