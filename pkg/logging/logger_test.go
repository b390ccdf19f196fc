package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the package at a temp directory and resets global state.
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origBaseDir := baseDir
	origLogDir := logDir
	origSessionID := sessionID

	baseDir = tempDir
	logDir = ""
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}

	t.Cleanup(func() {
		baseDir = origBaseDir
		logDir = origLogDir
		initErr = nil
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
		SetLevel(LevelDebug)
	})
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test-component")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.Component() != "test-component" {
		t.Errorf("Expected component 'test-component', got %q", logger.Component())
	}
	if logger.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}
	if _, err := os.Stat(logger.LogPath()); err != nil {
		t.Errorf("Log file does not exist at %s: %v", logger.LogPath(), err)
	}
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("worker")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Printf("Queued %d", 3)
	logger.Debugf("Debug message")
	logger.Infof("Info message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")
	logger.Close()

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	for _, pattern := range []string{
		"[worker] [INFO] Queued 3",
		"[worker] [DEBUG] Debug message",
		"[worker] [INFO] Info message",
		"[worker] [WARN] Warning message",
		"[worker] [ERROR] Error message",
	} {
		if !strings.Contains(string(content), pattern) {
			t.Errorf("Log content missing %q\nContent:\n%s", pattern, content)
		}
	}
}

func TestMultipleComponentsShareFile(t *testing.T) {
	setupTestDir(t)

	l1, err := NewLogger("bridge")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer l1.Close()
	l2, err := NewLogger("studio")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer l2.Close()

	if l1.LogPath() != l2.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", l1.LogPath(), l2.LogPath())
	}

	l1.Infof("from bridge")
	l2.Infof("from studio")

	content, _ := os.ReadFile(l1.LogPath())
	if !strings.Contains(string(content), "[bridge]") || !strings.Contains(string(content), "[studio]") {
		t.Errorf("Expected both components in log:\n%s", content)
	}
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(fileName, "-bridge.log") {
		t.Errorf("Expected log file to end with '-bridge.log', got %q", fileName)
	}
	if strings.TrimSuffix(fileName, "-bridge.log") != GetSessionID() {
		t.Errorf("Expected file name to start with the session id, got %q", fileName)
	}
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("cli", &buf)
	logger.With("repl").Warnf("careful")

	if !strings.Contains(buf.String(), "[cli/repl] [WARN] careful") {
		t.Errorf("Unexpected output: %q", buf.String())
	}
	if logger.LogPath() != "" {
		t.Errorf("Writer logger should have no path, got %q", logger.LogPath())
	}
}

func TestSetLevel(t *testing.T) {
	setupTestDir(t)

	var buf bytes.Buffer
	logger := NewWriterLogger("lvl", &buf)

	SetLevel(LevelWarn)
	logger.Debugf("hidden")
	logger.Infof("hidden")
	logger.Warnf("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Expected debug/info to be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected warn to be written: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelDebug,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestGetLogDirectory(t *testing.T) {
	setupTestDir(t)

	dir, err := GetLogDirectory()
	if err != nil {
		t.Fatalf("Failed to get log directory: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Log directory does not exist or is not a directory: %s", dir)
	}
}
