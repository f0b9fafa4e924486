// internal/logger/gelf_logger.go

package logger

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

// Variables for factories to allow mocking in tests
var gelfUDPWriterFactory = gelf.NewUDPWriter
var gelfTCPWriterFactory = gelf.NewTCPWriter

// maxShortMessageLength bounds the GELF short_message; the full rendered
// line always travels in full_message.
const maxShortMessageLength = 250

// GelfOptions selects the Graylog endpoint.
type GelfOptions struct {
	Host            string
	Port            int
	Protocol        string // "udp" (default) or "tcp"
	CompressionType string // "gzip", "zlib" or "none" (default), UDP only
}

// GelfDestination ships each record to a Graylog server as a GELF message.
type GelfDestination struct {
	destinationBase
	writer   gelf.Writer // nil if the connection could not be set up
	hostName string
	address  string
	queue    *writeQueue
}

// NewGelfDestination creates a GELF destination. A writer that cannot be
// created is reported through owner and leaves the destination inert.
func NewGelfDestination(owner *Logger, identifier string, opts GelfOptions) *GelfDestination {
	g := &GelfDestination{
		address: fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		queue:   newWriteQueue(identifier),
	}
	g.init(owner, identifier)

	hostName, err := os.Hostname()
	if err != nil {
		hostName = "unknown"
	}
	g.hostName = hostName

	writer, err := newGelfWriter(g.address, opts)
	if err != nil {
		g.reportInternal(g, ERROR, fmt.Sprintf("Attempt to connect GELF destination '%s' failed: %v", identifier, err))
		return g
	}
	g.writer = writer
	return g
}

func newGelfWriter(addr string, opts GelfOptions) (gelf.Writer, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("host is required for GELF destination")
	}
	if opts.Port <= 0 {
		return nil, fmt.Errorf("valid port is required for GELF destination")
	}

	if strings.EqualFold(opts.Protocol, "tcp") {
		tcpWriter, err := gelfTCPWriterFactory(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to create GELF TCP writer: %w", err)
		}
		return tcpWriter, nil
	}

	udpWriter, err := gelfUDPWriterFactory(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create GELF UDP writer: %w", err)
	}
	switch strings.ToLower(opts.CompressionType) {
	case "gzip":
		udpWriter.CompressionType = gelf.CompressGzip
	case "zlib":
		udpWriter.CompressionType = gelf.CompressZlib
	default:
		udpWriter.CompressionType = gelf.CompressNone
	}
	return udpWriter, nil
}

// Address returns the "host:port" the destination sends to.
func (g *GelfDestination) Address() string {
	return g.address
}

// IsConnected reports whether a GELF writer is available.
func (g *GelfDestination) IsConnected() bool {
	return g.writer != nil
}

// syslogSeverity maps a level onto the syslog severities GELF uses.
func syslogSeverity(level Level) int32 {
	switch level {
	case VERBOSE, DEBUG:
		return 7
	case INFO:
		return 6
	case WARNING:
		return 4
	case ERROR:
		return 3
	default:
		return 2
	}
}

func (g *GelfDestination) newMessage(record *Record, full string) *gelf.Message {
	return &gelf.Message{
		Version:  "1.1",
		Host:     g.hostName,
		Short:    truncateString(record.message, maxShortMessageLength),
		Full:     strings.TrimSuffix(full, "\n"),
		TimeUnix: float64(record.time.UnixNano()) / 1e9,
		Level:    syslogSeverity(record.level),
		Extra: map[string]interface{}{
			"_level_name": record.level.Describe(),
			"_logger":     g.identifier,
		},
	}
}

func (g *GelfDestination) ProcessRecord(record *Record) {
	if g.writer == nil || !g.matches(record) {
		return
	}
	msg := g.newMessage(record, renderRecord(record, g.renderOptions()))
	if record.function != "" {
		msg.Extra["_function"] = record.function
	}
	if record.file != "" {
		msg.Extra["_file"] = baseFileName(record.file)
		msg.Extra["_line"] = record.line
	}
	g.send(msg)
}

func (g *GelfDestination) ProcessInternalRecord(record *Record) {
	if g.writer == nil {
		return
	}
	g.send(g.newMessage(record, renderInternal(record, g.renderOptions())))
}

func (g *GelfDestination) send(msg *gelf.Message) {
	g.queue.enqueue(func() error {
		if err := g.writer.WriteMessage(msg); err != nil {
			return fmt.Errorf("failed to send GELF message to %s: %w", g.address, err)
		}
		return nil
	})
}

// Flush waits until queued messages have been handed to the writer.
func (g *GelfDestination) Flush() {
	g.queue.flush()
}

// Close drains the queue and closes the connection.
func (g *GelfDestination) Close() error {
	g.queue.close()
	if g.writer != nil {
		return g.writer.Close()
	}
	return nil
}

func (g *GelfDestination) String() string {
	return g.describe("GelfDestination") + " address: " + g.address
}

// Ensure GelfDestination implements the Destination interface.
var _ Destination = (*GelfDestination)(nil)
var _ Flusher = (*GelfDestination)(nil)

// truncateString shortens s to at most maxLength bytes, marking the cut with
// "...truncated". It never splits a UTF-8 sequence.
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	const ellipsis = "...truncated"
	suffix := ellipsis
	if maxLength <= len(ellipsis) {
		suffix = ""
	}

	cut := maxLength - len(suffix)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}
