// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

const (
	// DefaultMaxSizeMB caps a single log file before it is rotated.
	DefaultMaxSizeMB = 10
	// DefaultMaxBackups is the number of rotated files kept next to the active one.
	DefaultMaxBackups = 5
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel converts a config value such as "debug" or "WARN" into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelDebug, fmt.Errorf("unknown log level %q", s)
	}
}

// Options controls where and how a module logger writes.
type Options struct {
	Dir        string
	Module     string
	Level      LogLevel
	MaxSizeMB  int
	MaxBackups int
}

// New creates a module logger that appends to <Dir>/<Module>.log and rotates the file
// once it reaches MaxSizeMB. The returned closer releases the file handle.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if opts.Module == "" {
		return nil, nil, fmt.Errorf("logger module name cannot be empty")
	}
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = DefaultMaxSizeMB
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = DefaultMaxBackups
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("error creating log directory '%s': %w", opts.Dir, err)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, opts.Module+".log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	logger := NewWithWriter(writer, opts.Level).With(slog.String("module", opts.Module))
	return logger, writer, nil
}

// NewWithWriter builds a text logger on top of an arbitrary writer. Tests use it with a buffer.
func NewWithWriter(w io.Writer, level LogLevel) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.SlogLevel()})
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return NewWithWriter(io.Discard, LevelError)
}

// MaskToken hides a secret for logging, keeping only the first and last four characters.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// Truncate shortens long payloads before they are written to the log.
func Truncate(data string, maxLength int) string {
	if len(data) <= maxLength {
		return data
	}
	return fmt.Sprintf("%s... (truncated, %d total chars)", data[:maxLength], len(data))
}
