package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, content string) string {
	tempDir := t.TempDir()
	tempFile := filepath.Join(tempDir, "config.yaml")
	err := os.WriteFile(tempFile, []byte(content), 0644)
	require.NoError(t, err, "Failed to create temporary config file")
	return tempFile
}

func TestLoadConfig_Example(t *testing.T) {
	cfg, err := LoadConfig("../../config/example.yaml")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Logging
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, BoolValue(cfg.Logging.ShowLogLevel, false))
	assert.Equal(t, "yyyy-MM-dd HH:mm:ss.SSS", cfg.Logging.DateFormat)
	assert.True(t, cfg.Logging.Colorize)
	assert.Empty(t, cfg.Logging.WriteToFile)

	// Destinations
	require.Len(t, cfg.Destinations, 3)

	dest1 := cfg.Destinations[0]
	assert.Equal(t, "errors_only", dest1.Name)
	assert.Equal(t, "file", dest1.Type)
	assert.True(t, dest1.Enabled)
	assert.Equal(t, "error", dest1.Level)
	assert.Equal(t, "/tmp/fanlog-errors.log", dest1.Path)

	dest2 := cfg.Destinations[1]
	assert.Equal(t, "console", dest2.Type)
	assert.False(t, dest2.Enabled)
	assert.Equal(t, "*store*", dest2.Match)
	assert.False(t, BoolValue(dest2.ShowFileNames, true))
	assert.True(t, BoolValue(dest2.ShowLineNumbers, true))

	dest3 := cfg.Destinations[2]
	assert.Equal(t, "gelf", dest3.Type)
	assert.Equal(t, "graylog.example.com", dest3.Host)
	assert.Equal(t, 12201, dest3.Port)
	assert.Equal(t, "udp", dest3.Protocol)
	assert.Equal(t, "gzip", dest3.CompressionType)

	// Admin
	assert.False(t, cfg.Admin.Enabled)
	assert.Equal(t, 60, cfg.Admin.RateLimit)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Admin.TrustedProxies)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := createTempConfigFile(t, "destinations: []\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Nil(t, cfg.Logging.ShowFileNames)
	assert.True(t, BoolValue(cfg.Logging.ShowFileNames, true))
	assert.Equal(t, "127.0.0.1", cfg.Admin.Host)
	assert.Equal(t, 8089, cfg.Admin.Port)
	assert.Empty(t, cfg.Destinations)
}

func TestLoadConfig_Normalization(t *testing.T) {
	path := createTempConfigFile(t, `
logging:
  level: WARNING
destinations:
  - name: gl
    type: GELF
    enabled: true
    level: " Info "
    host: localhost
    port: 12201
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "warning", cfg.Logging.Level)
	require.Len(t, cfg.Destinations, 1)
	assert.Equal(t, "gelf", cfg.Destinations[0].Type)
	assert.Equal(t, "info", cfg.Destinations[0].Level)
	// GELF defaults
	assert.Equal(t, "udp", cfg.Destinations[0].Protocol)
	assert.Equal(t, "none", cfg.Destinations[0].CompressionType)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidCases(t *testing.T) {
	testCases := []struct {
		name          string
		config        string
		expectedError string
	}{
		{
			name:          "Malformed YAML",
			config:        "logging: [unclosed\n",
			expectedError: "error parsing config",
		},
		{
			name: "Unknown level",
			config: `
logging:
  level: loud
`,
			expectedError: "'Config.Logging.Level' failed on the 'oneof' tag",
		},
		{
			name: "Missing destination name",
			config: `
destinations:
  - type: console
    enabled: true
`,
			expectedError: "failed on the 'required' tag",
		},
		{
			name: "Unknown destination type",
			config: `
destinations:
  - name: x
    type: kafka
`,
			expectedError: "failed on the 'oneof' tag",
		},
		{
			name: "Duplicate destination name",
			config: `
destinations:
  - name: dup
    type: console
  - name: dup
    type: file
    path: /tmp/dup.log
`,
			expectedError: "duplicate name 'dup'",
		},
		{
			name: "File without path",
			config: `
destinations:
  - name: f
    type: file
`,
			expectedError: "path is required for type 'file'",
		},
		{
			name: "GELF without host",
			config: `
destinations:
  - name: g
    type: gelf
    port: 12201
`,
			expectedError: "host is required for type 'gelf'",
		},
		{
			name: "GELF without port",
			config: `
destinations:
  - name: g
    type: gelf
    host: localhost
`,
			expectedError: "invalid port 0 for type 'gelf'",
		},
		{
			name: "GELF invalid protocol",
			config: `
destinations:
  - name: g
    type: gelf
    host: localhost
    port: 12201
    protocol: http
`,
			expectedError: "failed on the 'oneof' tag",
		},
		{
			name: "Invalid match pattern",
			config: `
destinations:
  - name: c
    type: console
    match: "[unclosed"
`,
			expectedError: "invalid match pattern",
		},
		{
			name: "Invalid admin port",
			config: `
admin:
  enabled: true
  port: 70000
`,
			expectedError: "failed on the 'max' tag",
		},
		{
			name: "Negative rate limit",
			config: `
admin:
  enabled: true
  rate_limit: -1
`,
			expectedError: "failed on the 'min' tag",
		},
		{
			name: "Invalid trusted proxy",
			config: `
admin:
  enabled: true
  trusted_proxies: ["not-an-ip"]
`,
			expectedError: "invalid admin.trusted_proxies",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := createTempConfigFile(t, tc.config)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedError)
		})
	}
}

func TestValidateConfig_DisabledAdminIgnored(t *testing.T) {
	cfg := Default()
	cfg.Admin.Enabled = false
	cfg.Admin.TrustedProxies = []string{"bogus"}

	assert.NoError(t, ValidateConfig(cfg))
}

func TestBoolValue(t *testing.T) {
	yes, no := true, false

	assert.True(t, BoolValue(nil, true))
	assert.False(t, BoolValue(nil, false))
	assert.True(t, BoolValue(&yes, false))
	assert.False(t, BoolValue(&no, true))
}
