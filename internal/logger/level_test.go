package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLevelOrdering(t *testing.T) {
	ordered := []Level{VERBOSE, DEBUG, INFO, WARNING, ERROR, SEVERE, NONE}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1], ordered[i])
	}
}

func TestLevelDescribe(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{VERBOSE, "Verbose"},
		{DEBUG, "Debug"},
		{INFO, "Info"},
		{WARNING, "Warning"},
		{ERROR, "Error"},
		{SEVERE, "Severe"},
		{NONE, "None"},
		{Level(42), "Level(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.Describe())
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{input: "verbose", expected: VERBOSE},
		{input: "TRACE", expected: VERBOSE},
		{input: "Debug", expected: DEBUG},
		{input: " info ", expected: INFO},
		{input: "warn", expected: WARNING},
		{input: "WARNING", expected: WARNING},
		{input: "error", expected: ERROR},
		{input: "fatal", expected: SEVERE},
		{input: "severe", expected: SEVERE},
		{input: "off", expected: NONE},
		{input: "loud", expected: DEBUG, wantErr: true},
		{input: "", expected: DEBUG, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevelTextAndYAML(t *testing.T) {
	text, err := WARNING.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warning", string(text))

	var level Level
	require.NoError(t, level.UnmarshalText([]byte("severe")))
	assert.Equal(t, SEVERE, level)
	assert.Error(t, level.UnmarshalText([]byte("bogus")))

	var doc struct {
		Level Level `yaml:"level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("level: Info\n"), &doc))
	assert.Equal(t, INFO, doc.Level)

	assert.Error(t, yaml.Unmarshal([]byte("level: [1, 2]\n"), &doc))
	assert.Error(t, yaml.Unmarshal([]byte("level: nope\n"), &doc))
}
