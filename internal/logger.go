package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logMu    sync.RWMutex
	logLevel = LogLevelInfo
	logger   = newSlogger(os.Stderr)
)

func newSlogger(w io.Writer) *slog.Logger {
	// Level filtering happens in this package; the handler accepts everything.
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	defer logMu.Unlock()
	logLevel = level
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects log output, mainly for tests.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logger = newSlogger(w)
}

// ParseLogLevel maps a config/env string onto a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func logAt(level LogLevel, slevel slog.Level, format string, args ...interface{}) {
	logMu.RLock()
	l, current := logger, logLevel
	logMu.RUnlock()
	if current < level {
		return
	}
	l.Log(context.Background(), slevel, fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logAt(LogLevelError, slog.LevelError, format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logAt(LogLevelWarn, slog.LevelWarn, format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logAt(LogLevelInfo, slog.LevelInfo, format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logAt(LogLevelDebug, slog.LevelDebug, format, args...)
}
