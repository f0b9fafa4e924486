package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orgoj/fanlog/internal/config"
)

func main() {
	flag.Parse()

	if len(flag.Args()) < 1 {
		fmt.Println("Error: Config file path is required")
		fmt.Println("Usage: config-validator <config-file>")
		os.Exit(1)
	}
	configPath := flag.Args()[0]

	// Load and validate configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Checks that depend on the host the config is deployed to
	if err := validateEnvironment(cfg); err != nil {
		fmt.Printf("Validation error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid!")
}

// validateEnvironment checks that every log file can be created.
func validateEnvironment(cfg *config.Config) error {
	paths := make(map[string]string)
	if cfg.Logging.WriteToFile != "" {
		paths[cfg.Logging.WriteToFile] = "logging.write_to_file"
	}
	for _, dest := range cfg.Destinations {
		if !dest.Enabled || dest.Type != "file" {
			continue
		}
		if owner, ok := paths[dest.Path]; ok {
			return fmt.Errorf("destination '%s': path %s is already used by %s", dest.Name, dest.Path, owner)
		}
		paths[dest.Path] = "destination '" + dest.Name + "'"
	}

	for path, owner := range paths {
		dir := filepath.Dir(path)
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%s: directory %s: %w", owner, dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s: %s is not a directory", owner, dir)
		}
	}
	return nil
}
