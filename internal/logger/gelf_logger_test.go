package logger

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

// startGelfReader listens on a random local UDP port.
func startGelfReader(t *testing.T) (*gelf.Reader, GelfOptions) {
	t.Helper()
	reader, err := gelf.NewReader("127.0.0.1:0")
	require.NoError(t, err)

	host, portStr, err := net.SplitHostPort(reader.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return reader, GelfOptions{Host: host, Port: port}
}

func readGelfMessage(t *testing.T, reader *gelf.Reader) *gelf.Message {
	t.Helper()
	type result struct {
		msg *gelf.Message
		err error
	}
	ch := make(chan result, 1)
	go func() {
		msg, err := reader.ReadMessage()
		ch <- result{msg, err}
	}()
	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for GELF message")
		return nil
	}
}

func TestGelfDestination_SendsRecord(t *testing.T) {
	freezeTime(t)
	reader, opts := startGelfReader(t)

	g := NewGelfDestination(nil, "graylog", opts)
	defer g.Close()
	require.True(t, g.IsConnected())
	g.SetDateFormat(DefaultDateFormat, time.UTC)

	g.ProcessRecord(NewRecord(ERROR, "disk full", Site{Function: "save", File: "/src/Store.ext", Line: 42}))
	g.Flush()

	msg := readGelfMessage(t, reader)
	assert.Equal(t, "1.1", msg.Version)
	assert.Equal(t, "disk full", msg.Short)
	assert.Equal(t, "2024-03-05 14:07:09.123 [Error] [Store.ext:42] save: disk full", msg.Full)
	assert.Equal(t, int32(3), msg.Level)
	assert.InDelta(t, float64(fixedTime.Unix()), msg.TimeUnix, 1)
	assert.Equal(t, "save", msg.Extra["_function"])
	assert.Equal(t, "Store.ext", msg.Extra["_file"])
	assert.Equal(t, float64(42), msg.Extra["_line"])
	assert.Equal(t, "Error", msg.Extra["_level_name"])
	assert.Equal(t, "graylog", msg.Extra["_logger"])
}

func TestGelfDestination_InternalRecord(t *testing.T) {
	reader, opts := startGelfReader(t)
	opts.CompressionType = "gzip"

	g := NewGelfDestination(nil, "graylog", opts)
	defer g.Close()

	g.ProcessInternalRecord(NewRecord(INFO, "banner", Site{Function: "ignored", File: "ignored.ext", Line: 1}))
	g.Flush()

	msg := readGelfMessage(t, reader)
	assert.Equal(t, "banner", msg.Short)
	assert.True(t, strings.HasSuffix(msg.Full, "[Info]: banner"))
	assert.Equal(t, int32(6), msg.Level)
	assert.NotContains(t, msg.Extra, "_function")
	assert.NotContains(t, msg.Extra, "_file")
}

func TestGelfDestination_ConnectFailureIsInert(t *testing.T) {
	// find a port nobody listens on
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	console := &syncBuffer{}
	l := NewWithConsoleWriter(console)
	defer l.Close()

	g := NewGelfDestination(l, "graylog", GelfOptions{Host: "127.0.0.1", Port: addr.Port, Protocol: "tcp"})
	assert.False(t, g.IsConnected())
	g.ProcessRecord(NewRecord(INFO, "dropped", Site{}))
	g.Flush()
	assert.NoError(t, g.Close())

	l.Flush()
	assert.Contains(t, console.String(), "[Error]: Attempt to connect GELF destination 'graylog' failed")
}

func TestGelfDestination_WriterFactoryError(t *testing.T) {
	oldUDP := gelfUDPWriterFactory
	defer func() { gelfUDPWriterFactory = oldUDP }()
	gelfUDPWriterFactory = func(addr string) (*gelf.UDPWriter, error) {
		return nil, errors.New("mock udp failure")
	}
	out := captureFallback(t)

	g := NewGelfDestination(nil, "graylog", GelfOptions{Host: "localhost", Port: 12201})
	defer g.Close()

	assert.False(t, g.IsConnected())
	assert.Contains(t, out.String(), "mock udp failure")
	assert.Equal(t, "localhost:12201", g.Address())
	assert.Contains(t, g.String(), "GelfDestination: graylog")
}

func TestNewGelfWriter_ValidationErrors(t *testing.T) {
	_, err := newGelfWriter(":12201", GelfOptions{Port: 12201})
	assert.ErrorContains(t, err, "host is required")

	_, err = newGelfWriter("localhost:0", GelfOptions{Host: "localhost"})
	assert.ErrorContains(t, err, "valid port is required")
}

func TestSyslogSeverity(t *testing.T) {
	tests := []struct {
		level    Level
		expected int32
	}{
		{VERBOSE, 7},
		{DEBUG, 7},
		{INFO, 6},
		{WARNING, 4},
		{ERROR, 3},
		{SEVERE, 2},
	}

	for _, tt := range tests {
		t.Run(tt.level.Describe(), func(t *testing.T) {
			assert.Equal(t, tt.expected, syslogSeverity(tt.level))
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{name: "short", input: "hello", maxLength: 10, expected: "hello"},
		{name: "exact", input: "hello", maxLength: 5, expected: "hello"},
		{name: "long", input: strings.Repeat("a", 30), maxLength: 20, expected: "aaaaaaaa...truncated"},
		{name: "tiny limit", input: "hello world", maxLength: 5, expected: "hello"},
		{name: "multibyte boundary", input: "ééééééééééééé", maxLength: 15, expected: "é...truncated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateString(tt.input, tt.maxLength)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len(got), tt.maxLength)
		})
	}
}
