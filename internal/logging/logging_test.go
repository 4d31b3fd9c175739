package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("debug", "json", &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug().Str("model", "m").Msg("hello")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %q: %v", buf.String(), err)
	}
	if rec["message"] != "hello" || rec["model"] != "m" || rec["level"] != "debug" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewAutoOnBufferIsJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", "auto", &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info().Msg("x")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected json output for non-terminal writer, got %q", buf.String())
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", "console", &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info().Str("pid", "42").Msg("daemon started")
	out := buf.String()
	if strings.HasPrefix(out, "{") || !strings.Contains(out, "daemon started") || !strings.Contains(out, "pid=42") {
		t.Fatalf("unexpected console output: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New("warn", "json", &buf)
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"DEBUG": zerolog.DebugLevel,
		"error": zerolog.ErrorLevel,
		"off":   zerolog.Disabled,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := New("info", "xml", nil); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
