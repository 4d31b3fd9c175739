package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"llmchat/internal/chat"
)

// Chat outcomes that never reach the pipeline, or end without a pipeline kind.
const (
	outcomeOK               = "ok"
	outcomeUnsupportedMedia = "unsupported_media"
	outcomeRateLimited      = "rate_limited"
	outcomeBadRequest       = "bad_request"
	outcomeTimeout          = "timeout"
	outcomeClientGone       = "client_gone"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmchat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmchat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	inflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "llmchat",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "HTTP requests being served.",
		},
	)
	chatOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmchat",
			Subsystem: "http",
			Name:      "chat_outcomes_total",
			Help:      "POST /chat results by outcome.",
		},
		[]string{"outcome"},
	)
	// Generation takes seconds to minutes on local hardware.
	chatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmchat",
			Subsystem: "http",
			Name:      "chat_duration_seconds",
			Help:      "POST /chat latency by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 11),
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, inflightRequests, chatOutcomes, chatDuration)
}

// statusRecorder remembers the status code written through it. A body written
// without WriteHeader counts as 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}

// MetricsMiddleware records request counts and latency per route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflightRequests.Inc()
		defer inflightRequests.Dec()

		route := routePatternOrPath(r)
		sr := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(sr, r)
		if sr.status == 0 {
			sr.status = http.StatusOK
		}
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sr.status)).Inc()
		requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// routePatternOrPath returns the chi route pattern so that path parameters do
// not become label values. Inside router middleware the pattern is not
// resolved yet, so it is looked up.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
		if rc.Routes != nil {
			if p := rc.Routes.Find(chi.NewRouteContext(), r.Method, r.URL.Path); p != "" {
				return p
			}
		}
	}
	return r.URL.Path
}

// chatErrorOutcome names the outcome of a chat that returned err.
func chatErrorOutcome(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return outcomeTimeout
	}
	return string(chat.KindOf(err))
}

// observeChat records one finished POST /chat.
func observeChat(outcome string, start time.Time) {
	chatOutcomes.WithLabelValues(outcome).Inc()
	chatDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
