package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgoj/fanlog/internal/config"
	"github.com/orgoj/fanlog/internal/logger"
	"github.com/orgoj/fanlog/internal/server"
	"github.com/orgoj/fanlog/internal/validation"
	"github.com/orgoj/fanlog/internal/version"
)

func main() {
	// --- Configuration --- //
	configPath := flag.String("config", "", "Path to the configuration file (optional)")
	testConfigShort := flag.Bool("t", false, "Test configuration and exit (nginx style)")
	testConfigLong := flag.Bool("test", false, "Test configuration and exit (nginx style)")
	showVersion := flag.Bool("version", false, "Show version information and exit")
	levelName := flag.String("level", "info", "Level of the records created from stdin lines")
	function := flag.String("function", "stdin", "Function name attached to records created from stdin lines")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.VersionInfo())
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			fmt.Printf("[CRITICAL] Failed to load configuration from '%s': %v\n", *configPath, err)
			os.Exit(1)
		}
	}

	if *testConfigShort || *testConfigLong {
		fmt.Printf("Configuration '%s' is valid.\n", *configPath)
		os.Exit(0)
	}

	lineLevel, err := logger.ParseLevel(*levelName)
	if err != nil {
		fmt.Printf("[CRITICAL] %v\n", err)
		os.Exit(1)
	}

	// --- Logger --- //
	log, err := logger.FromConfig(cfg)
	if err != nil {
		// the logger is usable, failing destinations were skipped
		log.Warning("Some destinations could not be initialized: %v", err)
	}

	// --- Admin API --- //
	var srv *server.Server
	if cfg.Admin.Enabled {
		srv = server.NewServer(server.Dependencies{Config: cfg, Logger: log})
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Severe("Admin API error: %v", err)
			}
		}()
	}

	// --- Pipe stdin --- //
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := validation.SanitizeLine(scanner.Text(), validation.DefaultMaxLineLength)
		log.Log(lineLevel, line, logger.Site{Function: *function, File: "stdin", Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		log.Error("Reading stdin failed: %v", err)
	}

	// --- Graceful Shutdown --- //
	if srv != nil {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Received shutdown signal.")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warning("Admin API forced to shutdown: %v", err)
		}
	}

	if err := log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}
