package httpapi

import (
	"context"
	"testing"
	"time"
)

func TestJoinContexts_CancelsOnEither(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	b := context.Background()
	ctx, cancel := joinContexts(a, b)
	defer cancel()
	cancelA()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("joined context not canceled")
	}
}

func TestChatContext_ServerShutdownCancels(t *testing.T) {
	base, stop := context.WithCancel(context.Background())
	SetBaseContext(base)
	t.Cleanup(func() { SetBaseContext(nil) })

	ctx, cancel := chatContext(context.Background())
	defer cancel()
	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("chat context survived shutdown")
	}
}

func TestChatContext_Timeout(t *testing.T) {
	SetChatTimeout(20 * time.Millisecond)
	t.Cleanup(func() { SetChatTimeout(0) })
	ctx, cancel := chatContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatalf("expected deadline")
	}
	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Fatalf("err=%v", ctx.Err())
	}
}

func TestSetChatTimeout_NegativeDisables(t *testing.T) {
	SetChatTimeout(-time.Second)
	if chatTimeout != 0 {
		t.Fatalf("chatTimeout=%v", chatTimeout)
	}
}
