package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmchat/internal/chat"
	"llmchat/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Chat(ctx context.Context, prompt string) (chat.Response, error)
	Status(ctx context.Context) types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: orDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: orDefault(corsAllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type", "X-Log-Level"}),
			ExposedHeaders: []string{"X-Chat-ID", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/", serveIndex)
	r.Handle("/static/*", staticHandler())

	r.Get("/status", statusHandler(svc))
	r.Post("/chat", chatHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// statusHandler reports supervisor state and the installed models.
//
// @Summary      Daemon and model status
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status(r.Context())); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	}
}

// chatHandler answers one prompt with the configured model.
//
// @Summary      Chat with the local model
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      types.ChatRequest  true  "Prompt"
// @Success      200   {object}  types.ChatResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      415   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /chat [post]
func chatHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			observeChat(outcomeUnsupportedMedia, start)
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		if l := chatLimiter; l != nil && !l.Allow() {
			observeChat(outcomeRateLimited, start)
			writeJSONError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Oversized bodies land here too.
			observeChat(outcomeBadRequest, start)
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		cl := chatLog{lvl: requestLogLevel(r), r: r, chatID: uuid.NewString(), start: start}
		w.Header().Set("X-Chat-ID", cl.chatID)
		cl.begin(len(req.Message))

		// Server shutdown cancels the chat as well as the client going away.
		ctx, cancel := chatContext(r.Context())
		defer cancel()
		res, err := svc.Chat(ctx, req.Message)
		if err != nil {
			if r.Context().Err() != nil {
				observeChat(outcomeClientGone, start)
				return
			}
			outcome := chatErrorOutcome(err)
			observeChat(outcome, start)
			status, msg := chatErrorStatus(err)
			if outcome == outcomeTimeout {
				status, msg = http.StatusGatewayTimeout, "chat request timed out"
			}
			writeJSONError(w, status, msg)
			cl.end(status, err)
			return
		}
		observeChat(outcomeOK, start)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ChatResponse{Message: res.Text, Model: res.Label}); err != nil {
			cl.end(http.StatusInternalServerError, err)
			return
		}
		cl.end(http.StatusOK, nil)
	}
}
