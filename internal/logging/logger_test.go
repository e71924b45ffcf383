package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piyusharama/transcript-generator/internal/logging"
)

func TestNewWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "app.log")

	logger, closer, err := logging.New(logging.Options{Level: "info", Format: "console", Path: logPath})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("file message", "stage", "extraction")
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "file message") || !strings.Contains(text, "stage=extraction") {
		t.Fatalf("unexpected log content %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Fatalf("debug record written at info level: %q", text)
	}
	if strings.Contains(text, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", text)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("json message", "seq", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if record["msg"] != "json message" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "warn" {
		t.Errorf("level = %v, want warn", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Error("expected ts key")
	}
	if src, ok := record["source"].(string); !ok || !strings.Contains(src, ".go:") {
		t.Errorf("expected caller at debug level, got %v", record["source"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, _, err := logging.New(logging.Options{Format: "xml", Writer: &buf}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewRequiresOutput(t *testing.T) {
	if _, _, err := logging.New(logging.Options{}); err == nil {
		t.Fatal("expected error without path or writer")
	}
}

func TestDiscard(t *testing.T) {
	logging.Discard().Error("dropped")
}
