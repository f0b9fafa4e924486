package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
	"github.com/orgoj/fanlog/internal/iputil"
	"github.com/orgoj/fanlog/internal/validation"
	"gopkg.in/yaml.v3"
)

// Config represents the logging configuration
type Config struct {
	Logging      LoggingConfig    `yaml:"logging"`
	Destinations []LogDestination `yaml:"destinations" validate:"dive"`
	Admin        AdminConfig      `yaml:"admin"`
}

// LoggingConfig mirrors the setup call: it configures the built-in console
// destination and, with WriteToFile, the built-in file destination.
type LoggingConfig struct {
	Level           string `yaml:"level" validate:"omitempty,oneof=verbose trace debug info warning warn error severe fatal none off"`
	ShowLogLevel    *bool  `yaml:"show_log_level,omitempty"`    // Default: true
	ShowFileNames   *bool  `yaml:"show_file_names,omitempty"`   // Default: true
	ShowLineNumbers *bool  `yaml:"show_line_numbers,omitempty"` // Default: true
	WriteToFile     string `yaml:"write_to_file,omitempty"`
	DateFormat      string `yaml:"date_format,omitempty"` // e.g. "yyyy-MM-dd HH:mm:ss.SSS"
	UTC             bool   `yaml:"utc,omitempty"`
	Colorize        bool   `yaml:"colorize,omitempty"`
}

// LogDestination represents an additional logging destination
type LogDestination struct {
	Name    string `yaml:"name" validate:"required"`                         // Mandatory, unique identifier
	Type    string `yaml:"type" validate:"required,oneof=console file gelf"` // Mandatory
	Enabled bool   `yaml:"enabled"`

	Level           string `yaml:"level,omitempty" validate:"omitempty,oneof=verbose trace debug info warning warn error severe fatal none off"`
	ShowLogLevel    *bool  `yaml:"show_log_level,omitempty"`
	ShowFileNames   *bool  `yaml:"show_file_names,omitempty"`
	ShowLineNumbers *bool  `yaml:"show_line_numbers,omitempty"`
	DateFormat      string `yaml:"date_format,omitempty"`
	UTC             bool   `yaml:"utc,omitempty"`
	Match           string `yaml:"match,omitempty"` // glob on "file:line:function" or message

	// Console specific
	Colorize bool `yaml:"colorize,omitempty"`

	// File specific
	Path string `yaml:"path,omitempty"` // Mandatory for type: file

	// GELF specific. Host and port are mandatory for type: gelf, protocol
	// defaults to udp and compression_type to none.
	Host            string `yaml:"host,omitempty"`
	Port            int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Protocol        string `yaml:"protocol,omitempty" validate:"omitempty,oneof=udp tcp"`
	CompressionType string `yaml:"compression_type,omitempty" validate:"omitempty,oneof=gzip zlib none"`
}

// AdminConfig controls the optional admin HTTP API
type AdminConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port" validate:"omitempty,min=1,max=65535"`
	RateLimit int    `yaml:"rate_limit" validate:"min=0"` // requests per minute, 0 disables limiting

	// Peers allowed to set X-Forwarded-For (IPs or CIDR ranges)
	TrustedProxies []string `yaml:"trusted_proxies,omitempty"`
}

// BoolValue returns *p, or def when the option was not set.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// LoadConfig loads and validates the configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML configuration data
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	normalize(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Admin.Host = "127.0.0.1"
	cfg.Admin.Port = 8089
	return cfg
}

func normalize(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	for i := range cfg.Destinations {
		dest := &cfg.Destinations[i]
		dest.Type = strings.ToLower(strings.TrimSpace(dest.Type))
		dest.Level = strings.ToLower(strings.TrimSpace(dest.Level))
		dest.Protocol = strings.ToLower(dest.Protocol)
		dest.CompressionType = strings.ToLower(dest.CompressionType)
	}
}

// ValidateConfig uses go-playground/validator for struct-level validation.
// It complements the semantic validation in validateConfig.
func ValidateConfig(cfg *Config) error {
	validate := validator.New()

	err := validate.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag()))
		}
		return errors.New(strings.Join(messages, "; "))
	}

	return validateConfig(cfg)
}

// validateConfig performs semantic validation of the configuration
func validateConfig(cfg *Config) error {
	destinationNames := make(map[string]bool)
	for i, dest := range cfg.Destinations {
		if dest.Name == "" {
			return fmt.Errorf("destinations[%d]: name is required", i)
		}
		if err := validation.IsValidIdentifier(dest.Name, validation.DefaultMaxIdentifierLength); err != nil {
			return fmt.Errorf("destinations[%d]: invalid name '%s': %w", i, dest.Name, err)
		}
		if destinationNames[dest.Name] {
			return fmt.Errorf("destinations: duplicate name '%s' found", dest.Name)
		}
		destinationNames[dest.Name] = true

		if dest.Match != "" {
			if _, err := glob.Compile(dest.Match); err != nil {
				return fmt.Errorf("destinations[%s]: invalid match pattern '%s': %w", dest.Name, dest.Match, err)
			}
		}

		switch dest.Type {
		case "console":
		case "file":
			if dest.Path == "" {
				return fmt.Errorf("destinations[%s]: path is required for type 'file'", dest.Name)
			}
		case "gelf":
			if dest.Host == "" {
				return fmt.Errorf("destinations[%s]: host is required for type 'gelf'", dest.Name)
			}
			if dest.Port <= 0 || dest.Port > 65535 {
				return fmt.Errorf("destinations[%s]: invalid port %d for type 'gelf'", dest.Name, dest.Port)
			}
			// Set defaults for GELF
			if dest.Protocol == "" {
				cfg.Destinations[i].Protocol = "udp"
			}
			if dest.CompressionType == "" {
				cfg.Destinations[i].CompressionType = "none"
			}
		default:
			return fmt.Errorf("destinations[%s]: unknown type '%s'", dest.Name, dest.Type)
		}
	}

	if cfg.Admin.Enabled {
		if cfg.Admin.Port <= 0 || cfg.Admin.Port > 65535 {
			return fmt.Errorf("invalid admin.port: %d", cfg.Admin.Port)
		}
		if cfg.Admin.RateLimit < 0 {
			return errors.New("admin.rate_limit cannot be negative")
		}
		if _, err := iputil.ParseCIDRs(cfg.Admin.TrustedProxies); err != nil {
			return fmt.Errorf("invalid admin.trusted_proxies: %w", err)
		}
	}

	return nil
}
