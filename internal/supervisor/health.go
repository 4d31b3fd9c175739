package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"llmchat/internal/ollama"
)

// ModelLister is the daemon control API call used for health and catalog queries.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ollama.ModelEntry, error)
}

// HealthChecker polls the daemon's control API to decide readiness.
type HealthChecker struct {
	lister       ModelLister
	probeTimeout time.Duration
	logger       zerolog.Logger
	publisher    EventPublisher
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewHealthChecker returns a checker that probes with lister.
func NewHealthChecker(lister ModelLister, probeTimeout time.Duration, logger zerolog.Logger) *HealthChecker {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &HealthChecker{lister: lister, probeTimeout: probeTimeout, logger: logger, publisher: noopPublisher{}, sleep: sleepCtx}
}

func (h *HealthChecker) setPublisher(pub EventPublisher) {
	if pub == nil {
		h.publisher = noopPublisher{}
		return
	}
	h.publisher = pub
}

// Check performs a single probe: Ready if the control API answered, else Down.
func (h *HealthChecker) Check(ctx context.Context) HealthState {
	pctx, cancel := context.WithTimeout(ctx, h.probeTimeout)
	defer cancel()
	if _, err := h.lister.ListModels(pctx); err != nil {
		healthProbesTotal.WithLabelValues("fail").Inc()
		h.logger.Debug().Err(err).Msg("health probe failed")
		return HealthDown
	}
	healthProbesTotal.WithLabelValues("ok").Inc()
	return HealthReady
}

// PollUntilReady probes up to attempts times, sleeping interval between
// failed probes. It returns Ready on the first successful probe and Failed once
// exactly attempts probes have failed or ctx is done.
func (h *HealthChecker) PollUntilReady(ctx context.Context, attempts int, interval time.Duration) HealthState {
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		if h.Check(ctx) == HealthReady {
			return HealthReady
		}
		if attempt >= attempts {
			break
		}
		h.publisher.Publish(Event{Name: EventHealthWait, Fields: map[string]any{"attempt": attempt, "max": attempts}})
		if err := h.sleep(ctx, interval); err != nil {
			h.logger.Debug().Err(err).Int("attempt", attempt).Msg("health polling interrupted")
			break
		}
	}
	return HealthFailed
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
