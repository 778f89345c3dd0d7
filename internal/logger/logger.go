// Package logger holds the process-wide structured logger. It discards
// everything until Init is called, so library code can log unconditionally.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger instance. It's initialized to discard all output by default.
var L = Discard()

const (
	logPrefix     = "hivectl-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Level   slog.Level // Minimum log level
	Format  string     // "text" (default) or "json"
	Writer  io.Writer  // Destination; defaults to stderr unless LogDir is set
	LogDir  string     // Write to a dated file in this directory instead
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Init configures L. Call from main() before any log calls.
func Init(opts Options) error {
	if !opts.Enabled {
		L = Discard()
		return nil
	}
	w := opts.Writer
	if w == nil && opts.LogDir != "" {
		f, err := openDated(opts.LogDir, time.Now())
		if err != nil {
			return err
		}
		w = f
	}
	if w == nil {
		w = os.Stderr
	}
	L = New(w, opts.Level, opts.Format)
	return nil
}

// New builds a logger writing to w in the given format.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	ho := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

// ParseLevel accepts debug, info, warn and error, ignoring case.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// Or returns l, or L when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return L
}

func openDated(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Clean up old logs (best-effort, ignore errors)
	cleanOldLogs(dir, now)
	name := filepath.Join(dir, logPrefix+now.Format("2006-01-02")+logSuffix)
	return os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// cleanOldLogs removes log files older than retentionDays.
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		// Parse date from filename: hivectl-2024-01-05.log
		day, err := time.Parse("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, logPrefix), logSuffix))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
