package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestComponentLoggers(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewJSONLogger(&buf, "debug"))
	defer SetLogger(NewConsoleLogger(&bytes.Buffer{}, "info"))

	HDKey.Warn().Uint32("index", 7).Msg("skipped")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "hdkey" {
		t.Errorf("component = %v, want hdkey", entry["component"])
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
}

func TestJSONLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "error")
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info message written at error level: %q", buf.String())
	}
}
