// Package logger holds the process-wide slog logger used by mmctl and handed
// to the allocator. Output is discarded until Init is called.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger instance. It discards all output by default.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix     = "mmctl-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	JSON    bool       // JSON records instead of key=value text
	LogDir  string     // Write daily files here instead of Writer
	Writer  io.Writer  // Destination when LogDir is empty. Default: os.Stderr
	Level   slog.Level // Minimum log level
}

// Init configures logging. Call from main before any log calls. The
// returned closer releases the log file, if one was opened.
func Init(opts Options) (io.Closer, error) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nopCloser{}, nil
	}

	var (
		w      = opts.Writer
		closer io.Closer = nopCloser{}
	)
	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return nil, err
		}
		cleanOldLogs(opts.LogDir, time.Now())

		name := filepath.Join(opts.LogDir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}
	if w == nil {
		w = os.Stderr
	}

	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, ho))
	} else {
		L = slog.New(slog.NewTextHandler(w, ho))
	}
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// cleanOldLogs removes log files older than retentionDays.
func cleanOldLogs(logDir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}

		// mmctl-2024-01-05.log
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix)
		logDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
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
