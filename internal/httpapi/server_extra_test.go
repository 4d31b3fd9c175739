package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmchat/internal/chat"
)

func TestChatHandler_RateLimited(t *testing.T) {
	SetRateLimit(0.001, 1)
	t.Cleanup(func() { SetRateLimit(0, 0) })

	r := NewMux(&mockService{resp: chat.Response{Text: "ok", Label: "Chompers"}})
	if w := postChat(t, r, `{"message":"a"}`); w.Code != http.StatusOK {
		t.Fatalf("first request status=%d", w.Code)
	}
	w := postChat(t, r, `{"message":"b"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d", w.Code)
	}
	decodeError(t, w)
	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(mrr.Body.String(), `llmchat_http_chat_outcomes_total{outcome="rate_limited"}`) {
		t.Fatalf("rate limit rejection not counted")
	}
}

func TestChatHandler_BodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(16)
	t.Cleanup(func() { SetMaxBodyBytes(0) })
	svc := &mockService{}
	w := postChat(t, NewMux(svc), `{"message":"`+strings.Repeat("x", 64)+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if len(svc.prompts) != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestCORSPreflight(t *testing.T) {
	SetCORSOptions(true, []string{"http://example.com"}, nil, nil)
	t.Cleanup(func() { SetCORSOptions(false, nil, nil, nil) })

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("allow-origin=%q status=%d", got, w.Code)
	}
}

func TestCORSDisabledByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
