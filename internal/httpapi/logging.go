package httpapi

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("LLMCHAT_HTTP_LOG_LEVEL"))

// SetDefaultLogLevel sets the level used when a request carries no override.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// chatLog carries the per-request fields of a /chat log line.
type chatLog struct {
	lvl    LogLevel
	r      *http.Request
	chatID string
	start  time.Time
}

func (c chatLog) begin(promptLen int) {
	if c.lvl < LevelInfo {
		return
	}
	if zlog == nil {
		log.Printf("chat start id=%s prompt_len=%d", c.chatID, promptLen)
		return
	}
	z := zlog.Info().Str("path", c.r.URL.Path).Str("chat_id", c.chatID)
	if rid := middleware.GetReqID(c.r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	if c.lvl >= LevelDebug {
		z = z.Int("prompt_len", promptLen)
	}
	z.Msg("chat start")
}

func (c chatLog) end(status int, err error) {
	if c.lvl < LevelInfo && !(c.lvl >= LevelError && err != nil) {
		return
	}
	if zlog == nil {
		if err != nil {
			log.Printf("chat end id=%s status=%d dur=%s err=%v", c.chatID, status, time.Since(c.start), err)
		} else {
			log.Printf("chat end id=%s status=%d dur=%s", c.chatID, status, time.Since(c.start))
		}
		return
	}
	z := zlog.Info()
	if err != nil {
		z = zlog.Error().Err(err)
	}
	z = z.Int("status", status).Dur("dur", time.Since(c.start)).Str("chat_id", c.chatID)
	if rid := middleware.GetReqID(c.r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("chat end")
}
