package httpapi

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("POST", "/chat?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("POST", "/chat?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("short query override failed: %v", got)
	}
	r = httptest.NewRequest("POST", "/chat", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	prev := defaultLogLevel
	t.Cleanup(func() { defaultLogLevel = prev })
	SetDefaultLogLevel("info")
	if got := requestLogLevel(httptest.NewRequest("POST", "/chat", nil)); got != LevelInfo {
		t.Fatalf("default level not applied: %v", got)
	}
}

func withLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := zlog
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { zlog = prev })
	return &buf
}

func TestChatLog_InfoLinesCarryChatID(t *testing.T) {
	buf := withLogger(t)
	cl := chatLog{lvl: LevelDebug, r: httptest.NewRequest("POST", "/chat", nil), chatID: "c-1", start: time.Now()}
	cl.begin(12)
	cl.end(200, nil)
	out := buf.String()
	for _, s := range []string{`"message":"chat start"`, `"prompt_len":12`, `"message":"chat end"`, `"chat_id":"c-1"`, `"status":200`} {
		if !strings.Contains(out, s) {
			t.Fatalf("missing %s in %q", s, out)
		}
	}
}

func TestChatLog_ErrorLevelOnlyLogsFailures(t *testing.T) {
	buf := withLogger(t)
	cl := chatLog{lvl: LevelError, r: httptest.NewRequest("POST", "/chat", nil), chatID: "c-2", start: time.Now()}
	cl.begin(1)
	cl.end(200, nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output for success at error level: %q", buf.String())
	}
	cl.end(500, errors.New("daemon down"))
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), "daemon down") {
		t.Fatalf("missing error line: %q", buf.String())
	}
}
