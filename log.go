package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// logConfig is read from TRICKLE_* environment variables.
type logConfig struct {
	// Debug sends every diagnostic, debug level included, to a log file in
	// the user cache directory instead of stderr.
	Debug bool `env:"DEBUG"`
}

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "trickle").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trickle.log"), nil
}

// setupLog points the default logger at stderr, showing warnings and errors
// only, or at the debug log file. Rendered output never goes through it.
func setupLog() (func() error, error) {
	nop := func() error { return nil }

	cfg, err := env.ParseAsWithOptions[logConfig](env.Options{Prefix: "TRICKLE_"})
	if err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "trickle",
		Level:  log.WarnLevel,
	})
	log.SetDefault(logger)
	if !cfg.Debug {
		return nop, nil
	}

	// Log to file, if set
	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		log.Warn("Debug log disabled", "err", err)
		return nop, nil
	}
	f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		log.Warn("Debug log disabled", "err", err)
		return nop, nil
	}
	logger.SetOutput(f)
	logger.SetLevel(log.DebugLevel)
	logger.SetReportTimestamp(true)
	return f.Close, nil
}
