package httpapi

import (
	"time"

	"golang.org/x/time/rate"
)

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// chatTimeout bounds a single /chat request. Zero means no additional timeout
// beyond server/connection timeouts.
var chatTimeout time.Duration

// SetChatTimeout sets the per-request chat timeout (0 disables).
func SetChatTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	chatTimeout = d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}

// chatLimiter throttles POST /chat. Nil means unlimited.
var chatLimiter *rate.Limiter

// SetRateLimit limits POST /chat to rps requests per second with the given
// burst. rps <= 0 disables limiting.
func SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		chatLimiter = nil
		return
	}
	if burst <= 0 {
		burst = 1
	}
	chatLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}
