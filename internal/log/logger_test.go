package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/blueprint/internal/errors"
)

func newBufferLogger(buf *bytes.Buffer, level Level, format Format) *Logger {
	return New(Config{
		Level:       level,
		Format:      format,
		Output:      NewOutput(buf),
		ServiceName: "blueprint-test",
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return entry
}

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		log     func(l *Logger)
		wantOut bool
	}{
		{"debug filtered at info", LevelInfo, func(l *Logger) { l.Debug("x") }, false},
		{"info passes at info", LevelInfo, func(l *Logger) { l.Info("x") }, true},
		{"warn filtered at error", LevelError, func(l *Logger) { l.Warn("x") }, false},
		{"error passes at error", LevelError, func(l *Logger) { l.Error("x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newBufferLogger(&buf, tt.level, FormatJSON))

			if got := buf.Len() > 0; got != tt.wantOut {
				t.Errorf("output written = %v, want %v", got, tt.wantOut)
			}
		})
	}
}

func TestJSONFormatOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo, FormatJSON)

	logger.Info("phase completed", "phase", "core-impl", "tasks", 3)

	entry := decodeLine(t, &buf)
	if entry["msg"] != "phase completed" {
		t.Errorf("msg = %v, want %q", entry["msg"], "phase completed")
	}
	if entry["phase"] != "core-impl" {
		t.Errorf("phase = %v, want core-impl", entry["phase"])
	}
	if entry["service"] != "blueprint-test" {
		t.Errorf("service = %v, want blueprint-test", entry["service"])
	}
}

func TestTextFormatOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo, FormatText)

	logger.Info("run started", "operation_id", "op-1")

	out := buf.String()
	if !strings.Contains(out, "run started") || !strings.Contains(out, "operation_id=op-1") {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestWithAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo, FormatJSON).
		With("operation_id", "op-7").
		WithGroup("task")

	logger.Info("done", "id", "impl-0")

	entry := decodeLine(t, &buf)
	if entry["operation_id"] != "op-7" {
		t.Errorf("operation_id = %v, want op-7", entry["operation_id"])
	}
	group, ok := entry["task"].(map[string]any)
	if !ok || group["id"] != "impl-0" {
		t.Errorf("task group = %v, want id impl-0", entry["task"])
	}
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantCause bool
	}{
		{
			name:     "coded error",
			err:      errors.New(errors.ErrCodeTaskFailed, "task impl-0 failed"),
			wantCode: "EXEC-001",
		},
		{
			name:      "coded error with cause",
			err:       errors.Wrap(errors.ErrCodeRollbackFailed, "rollback incomplete", fmt.Errorf("permission denied")),
			wantCode:  "ROLLBACK-001",
			wantCause: true,
		},
		{
			name: "plain error",
			err:  fmt.Errorf("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newBufferLogger(&buf, LevelInfo, FormatJSON).WithError(tt.err).Info("failed")

			entry := decodeLine(t, &buf)
			if tt.wantCode != "" && entry["error_code"] != tt.wantCode {
				t.Errorf("error_code = %v, want %s", entry["error_code"], tt.wantCode)
			}
			if tt.wantCode == "" && entry["error"] != tt.err.Error() {
				t.Errorf("error = %v, want %s", entry["error"], tt.err.Error())
			}
			if _, hasCause := entry["cause"]; hasCause != tt.wantCause {
				t.Errorf("cause present = %v, want %v", hasCause, tt.wantCause)
			}
		})
	}
}

func TestWithErrorNil(t *testing.T) {
	logger := Discard()
	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, LevelInfo, FormatJSON)

	logger.LogError(context.Background(), "rollback failed", errors.NewRollbackFailure("op-1", fmt.Errorf("disk full")))

	entry := decodeLine(t, &buf)
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
	if entry["severity"] != "critical" {
		t.Errorf("severity = %v, want critical", entry["severity"])
	}

	buf.Reset()
	logger.LogError(context.Background(), "ignored", nil)
	if buf.Len() != 0 {
		t.Error("LogError(nil) should not write")
	}
}

func TestFormatParsing(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"text", FormatText},
		{"console", FormatText},
		{"", FormatJSON},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultConfigs(t *testing.T) {
	if cfg := DefaultConfig(); cfg.Output.Writer() != os.Stderr || cfg.Level != LevelInfo {
		t.Errorf("DefaultConfig = %+v, want info level on stderr", cfg)
	}
	if cfg := DevelopmentConfig(); !cfg.AddSource || cfg.Format != FormatText {
		t.Errorf("DevelopmentConfig = %+v, want text with source", cfg)
	}
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "blueprint.log")
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: OutputFile(FileOutput{Path: path, MaxSizeMB: 1})})

	logger.Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestNewWithNilOutputFallsBack(t *testing.T) {
	logger := New(Config{Level: LevelInfo})
	if logger.Config().Output.Writer() != os.Stderr {
		t.Error("nil output should fall back to stderr")
	}
}
