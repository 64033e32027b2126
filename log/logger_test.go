package log_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwantia/layerfs/log"
)

func TestParse(t *testing.T) {
	tests := map[string]log.LogLevel{
		"debug":   log.Debug,
		"INFO":    log.Info,
		" warn ":  log.Warn,
		"warning": log.Warn,
		"Error":   log.Error,
		"fatal":   log.Fatal,
	}

	for in, want := range tests {
		got, err := log.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := log.Parse("verbose"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestWriterLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWriterLogger("layerfs", log.Info, &buf)

	logger.Debug("hidden %d", 1)
	logger.Info("visible %d", 2)
	logger.Named("mount").Warn("resolver slow")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry should be filtered: %q", out)
	}
	if !strings.Contains(out, "INFO  [layerfs] visible 2") {
		t.Errorf("missing info entry: %q", out)
	}
	if !strings.Contains(out, "[layerfs/mount] resolver slow") {
		t.Errorf("missing named entry: %q", out)
	}
}

func TestWriterLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWriterLogger("svc", log.Debug, &buf)
	logger.JSON = true

	logger.Debug("hello %s", "world")

	var entry map[string]string
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry["level"] != "DEBUG" || entry["service"] != "svc" || entry["message"] != "hello world" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "layerfs.log")
	logger := log.NewLogger("file", log.Info, file, true)

	logger.Info("written to %s", "disk")

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "written to disk") {
		t.Errorf("log file content = %q", content)
	}
}

func TestDiscard(t *testing.T) {
	logger := log.Discard()
	logger.Error("dropped")
	logger.Named("child").Warn("dropped too")
}
