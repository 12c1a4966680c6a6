package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/lineage/internal/config"
)

func TestLoggerWritesToVaultLogFile(t *testing.T) {
	vaultDir := t.TempDir()
	logger, err := New(vaultDir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Slog().Debug("hidden detail")
	logger.Slog().Error("document not found", "name", "Events.Weekly")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(vaultDir, config.Dir, "logs", "lineage.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "document not found") || !strings.Contains(out, "name=Events.Weekly") {
		t.Fatalf("log missing record: %q", out)
	}
	if strings.Contains(out, "hidden detail") {
		t.Fatalf("debug record should be filtered at info level: %q", out)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Slog().Info("dropped")
	if err := logger.Close(); err != nil {
		t.Fatalf("close nil logger: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
