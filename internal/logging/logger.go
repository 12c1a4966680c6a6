package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/lineage/internal/config"
)

// Logger appends structured lines to .lineage/logs/lineage.log so users can
// inspect failed lookups and creations after a command has exited.
type Logger struct {
	file *os.File
	slog *slog.Logger
}

// New creates (or reuses) the log file for the given vault directory.
func New(vaultDir string, level slog.Level) (*Logger, error) {
	logDir := filepath.Join(vaultDir, config.Dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "lineage.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return &Logger{file: f, slog: slog.New(handler)}, nil
}

// Slog returns the structured logger backed by the log file.
func (l *Logger) Slog() *slog.Logger {
	if l == nil || l.slog == nil {
		return Discard()
	}
	return l.slog
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Discard returns a logger that drops every record. Library packages fall
// back to it when no logger is injected.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", value)
	}
}
