// Package logging builds the zap logger. The TUI owns the terminal, so logs go
// to a file in the profile directory instead of stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const filename = "chat.log"

// Path returns the log file inside profileDir.
func Path(profileDir string) string {
	return filepath.Join(profileDir, filename)
}

// New returns a JSON logger writing to <profileDir>/chat.log at level
// (debug, info, warn, error). verbose forces debug.
func New(profileDir, level string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	config := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil && level != "" {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if level == "" {
		lvl = zapcore.InfoLevel
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{Path(profileDir)}
	config.ErrorOutputPaths = []string{Path(profileDir)}
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
