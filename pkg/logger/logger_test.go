package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, level := range levels {
		Init(level)
		if Log == nil {
			t.Errorf("Init(%s) should set Log", level)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitWithConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "json format stdout",
			config: Config{Level: "info", Format: "json", Output: "stdout"},
		},
		{
			name:   "text format stderr",
			config: Config{Level: "debug", Format: "text", Output: "stderr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitWithConfig(tt.config)
			if Log == nil {
				t.Error("Log should not be nil")
			}
		})
	}
}

func TestInitWithConfig_FileOutput(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "flowtrace.log")

	InitWithConfig(Config{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
		MaxSize:  1,
	})

	Log.Info("augmenting path applied", "path_flow", 4)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "augmenting path applied") {
		t.Errorf("log file content = %q", data)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("visible", "max_flow", 23)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["msg"] != "visible" || entry["max_flow"] != float64(23) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestContextIDs(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithRunID(ctx, "run-1")

	if RequestIDFromContext(ctx) != "req-1" {
		t.Error("request id not stored")
	}
	if RunIDFromContext(ctx) != "run-1" {
		t.Error("run id not stored")
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("empty context should yield empty request id")
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	prev := Log
	Log = NewWithWriter(&buf, "info", "json")
	defer func() { Log = prev }()

	ctx := ContextWithRequestID(context.Background(), "req-42")
	WithContext(ctx, "key1", "value1").Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, `"key1":"value1"`) {
		t.Errorf("context fields missing: %s", out)
	}
}

func TestLoggingFunctions(t *testing.T) {
	Init("debug")

	// These should not panic
	Debug("debug message", "key", "value")
	Info("info message", "key", "value")
	Warn("warn message", "key", "value")
	Error("error message", "key", "value")
}

func TestWithHelpers(t *testing.T) {
	Init("info")

	if WithRequestID("req-123") == nil {
		t.Error("WithRequestID should return logger")
	}
	if WithRunID("run-123") == nil {
		t.Error("WithRunID should return logger")
	}
	if WithService("flow-svc") == nil {
		t.Error("WithService should return logger")
	}
}
