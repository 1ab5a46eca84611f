package internal

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_Fallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := newLogger(ApplicationConfig{LogLevel: slog.LevelWarn}, &buf)
	defer closer.Close()

	logger.Info("worker: drained")
	logger.Warn("watcher: error", slog.String("path", "a.md"))

	out := buf.String()
	if strings.Contains(out, "drained") {
		t.Errorf("info record below level was written: %s", out)
	}
	if !strings.Contains(out, `"msg":"watcher: error"`) || !strings.Contains(out, `"path":"a.md"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestNewLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "quiet.log")
	var fallback bytes.Buffer
	logger, closer := newLogger(ApplicationConfig{
		LogLevel: slog.LevelInfo,
		Log:      LogConfig{File: file, MaxSizeMB: 1},
	}, &fallback)

	logger.Info("Server starting...")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "Server starting...") {
		t.Errorf("log file = %q", data)
	}
	if fallback.Len() != 0 {
		t.Errorf("fallback should stay empty, got %q", fallback.String())
	}
}
