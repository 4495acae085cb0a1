package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		levelStr string
		want     Level
		wantErr  bool
	}{
		{name: "debug", levelStr: "DEBUG", want: LevelDebug},
		{name: "lowercase_debug", levelStr: "debug", want: LevelDebug},
		{name: "mixed_case", levelStr: "Warn", want: LevelWarn},
		{name: "info", levelStr: "INFO", want: LevelInfo},
		{name: "warning_alias", levelStr: "WARNING", want: LevelWarn},
		{name: "error", levelStr: "ERROR", want: LevelError},
		{name: "invalid", levelStr: "INVALID", want: LevelInfo, wantErr: true},
		{name: "empty", levelStr: "", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.levelStr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel() = %v, want %v", got, tt.want)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidLogLevel) {
				t.Errorf("ParseLevel() error not wrapping ErrInvalidLogLevel: %v", err)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{level: LevelDebug, want: "DEBUG"},
		{level: LevelInfo, want: "INFO"},
		{level: LevelWarn, want: "WARN"},
		{level: LevelError, want: "ERROR"},
		{level: Level(42), want: "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSetLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)

	Info("should be filtered")
	Warn("should appear", "key", "value")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Errorf("info message leaked through warn level: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn message missing from output: %s", out)
	}
}

func TestJSONOutputShape(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("hello", "artifact", "redis")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not a JSON object: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["artifact"] != "redis" {
		t.Errorf("artifact = %v, want redis", entry["artifact"])
	}
}
