// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// logger.go - Centralized logging configuration for the actions gateway.
//
// This package provides a structured logging solution using Go's slog package
// with configurable log levels, structured output, and component-based loggers.
//
// Configuration:
// - LOG_LEVEL: DEBUG, INFO, WARN, or ERROR (default: INFO)
// - LOG_FORMAT: "json" for JSON output, "text" for human-readable (default: text)
// - LOG_FILE: optional file path for log output (default: stderr)

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	defaultLogger *slog.Logger
	logLevel      = slog.LevelInfo
)

// Initialize sets up the global logger configuration from environment variables.
func Initialize() {
	logLevel = ParseLevel(os.Getenv("LOG_LEVEL"))

	var output io.Writer = os.Stderr
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			slog.Error("Failed to open log file, using stderr", "file", logFile, "error", err)
		} else {
			output = file
		}
	}

	var handler slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	rebindComponentLoggers()
}

// ParseLevel converts a level name to a slog.Level, defaulting to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogger returns a component-specific logger with the given component name.
// The component name is included in all log entries for easier filtering.
func GetLogger(component string) *slog.Logger {
	if defaultLogger == nil {
		Initialize()
	}
	return defaultLogger.With("component", component)
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return logLevel
}

// IsDebugEnabled returns true if debug logging is enabled.
func IsDebugEnabled() bool {
	return logLevel <= slog.LevelDebug
}

// SetLevel sets the log level programmatically (useful for testing).
func SetLevel(level slog.Level) {
	logLevel = level
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(defaultLogger)
	rebindComponentLoggers()
}

// Component-specific logger instances for commonly used components. They
// are bound at package init and rebound on every Initialize or SetLevel,
// so reading LOG_* from a .env file loaded in main still takes effect.
var (
	MainLogger    *slog.Logger
	ConfigLogger  *slog.Logger
	AuthLogger    *slog.Logger
	APILogger     *slog.Logger
	ActionsLogger *slog.Logger
	ServerLogger  *slog.Logger
)

func init() {
	MainLogger = GetLogger("main")
	ConfigLogger = GetLogger("config")
	AuthLogger = GetLogger("auth")
	APILogger = GetLogger("msapi")
	ActionsLogger = GetLogger("actions")
	ServerLogger = GetLogger("server")
}

func rebindComponentLoggers() {
	MainLogger = defaultLogger.With("component", "main")
	ConfigLogger = defaultLogger.With("component", "config")
	AuthLogger = defaultLogger.With("component", "auth")
	APILogger = defaultLogger.With("component", "msapi")
	ActionsLogger = defaultLogger.With("component", "actions")
	ServerLogger = defaultLogger.With("component", "server")
}
