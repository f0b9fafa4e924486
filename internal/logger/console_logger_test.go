package logger

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for use from sink goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Lines() []string {
	s := strings.TrimSuffix(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func newTestConsole(t *testing.T, id string) (*ConsoleDestination, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	c := NewConsoleDestinationWithWriter(nil, id, buf)
	c.SetDateFormat(DefaultDateFormat, time.UTC)
	t.Cleanup(func() { _ = c.Close() })
	return c, buf
}

func TestConsoleDestination_Defaults(t *testing.T) {
	c, _ := newTestConsole(t, "console")

	assert.Equal(t, "console", c.Identifier())
	assert.Equal(t, DEBUG, c.OutputLevel())
	assert.True(t, c.ShowLogLevel())
	assert.True(t, c.ShowFileName())
	assert.True(t, c.ShowLineNumber())
	assert.Equal(t, DefaultDateFormat, c.DateFormat())
	assert.Nil(t, c.Owner())
	assert.Contains(t, c.String(), "ConsoleDestination: console - LogLevel: Debug")
}

func TestConsoleDestination_ProcessRecord(t *testing.T) {
	freezeTime(t)
	c, buf := newTestConsole(t, "console")

	c.ProcessRecord(NewRecord(ERROR, "disk full", Site{Function: "save", File: "/src/Store.ext", Line: 42}))
	c.ProcessInternalRecord(NewRecord(INFO, "banner", Site{}))
	c.Flush()

	assert.Equal(t, []string{
		"2024-03-05 14:07:09.123 [Error] [Store.ext:42] save: disk full",
		"2024-03-05 14:07:09.123 [Info]: banner",
	}, buf.Lines())
}

func TestConsoleDestination_IsEnabledFor(t *testing.T) {
	c, _ := newTestConsole(t, "console")
	levels := []Level{VERBOSE, DEBUG, INFO, WARNING, ERROR, SEVERE}

	for _, threshold := range append(levels, NONE) {
		c.SetOutputLevel(threshold)
		for _, level := range levels {
			assert.Equal(t, level >= threshold, c.IsEnabledFor(level), "threshold %s level %s", threshold, level)
		}
	}
}

func TestConsoleDestination_ColorizeRequiresTerminal(t *testing.T) {
	freezeTime(t)
	c, buf := newTestConsole(t, "console")

	c.SetColorize(true)
	assert.False(t, c.Colorize(), "a buffer is not a terminal")

	c.ProcessRecord(NewRecord(WARNING, "plain", Site{Function: "f"}))
	c.Flush()
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestConsoleDestination_Match(t *testing.T) {
	c, buf := newTestConsole(t, "console")
	require.NoError(t, c.SetMatch("*Store*"))

	c.ProcessRecord(NewRecord(INFO, "kept by file", Site{Function: "save", File: "/src/Store.ext", Line: 1}))
	c.ProcessRecord(NewRecord(INFO, "dropped", Site{Function: "run", File: "/src/Main.ext", Line: 2}))
	c.ProcessRecord(NewRecord(INFO, "Storefront kept by message", Site{Function: "run", File: "/src/Main.ext", Line: 3}))
	// internal records ignore the filter
	c.ProcessInternalRecord(NewRecord(INFO, "internal", Site{}))
	c.Flush()

	out := buf.String()
	assert.Contains(t, out, "kept by file")
	assert.Contains(t, out, "Storefront kept by message")
	assert.Contains(t, out, "internal")
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, c.String(), "match: *Store*")

	err := c.SetMatch("[unclosed")
	assert.Error(t, err)

	require.NoError(t, c.SetMatch(""))
	c.ProcessRecord(NewRecord(INFO, "dropped before, kept now", Site{File: "Main.ext"}))
	c.Flush()
	assert.Contains(t, buf.String(), "kept now")
}

func TestConsoleDestination_ConcurrentLinesNotInterleaved(t *testing.T) {
	c, buf := newTestConsole(t, "console")

	const goroutines, perGoroutine = 20, 50
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				c.ProcessRecord(NewRecord(INFO, fmt.Sprintf("g%d-i%d", g, i), Site{Function: "worker", File: "w.ext", Line: g}))
			}
		}(g)
	}
	wg.Wait()
	c.Flush()

	lines := buf.Lines()
	require.Len(t, lines, goroutines*perGoroutine)
	for _, line := range lines {
		assert.Contains(t, line, "[Info] [w.ext:")
		assert.Contains(t, line, "] worker: g")
	}
}

func TestConsoleDestination_CloseDropsRecords(t *testing.T) {
	c, buf := newTestConsole(t, "console")

	c.ProcessRecord(NewRecord(INFO, "before", Site{}))
	require.NoError(t, c.Close())
	c.ProcessRecord(NewRecord(INFO, "after", Site{}))
	c.Flush()

	assert.Contains(t, buf.String(), "before")
	assert.NotContains(t, buf.String(), "after")
}
