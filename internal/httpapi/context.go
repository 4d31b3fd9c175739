package httpapi

import (
	"context"
)

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context that is canceled when either a or b is done.
// The returned cancel func must be called to release the goroutine when handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// chatContext derives the context for one chat call from the request and the
// server base context, bounded by the configured chat timeout.
func chatContext(reqCtx context.Context) (context.Context, context.CancelFunc) {
	joined, cancelJoin := joinContexts(serverBaseCtx, reqCtx)
	if chatTimeout <= 0 {
		return joined, cancelJoin
	}
	ctx, cancel := context.WithTimeout(joined, chatTimeout)
	return ctx, func() {
		cancel()
		cancelJoin()
	}
}
