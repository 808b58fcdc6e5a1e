package chatstream

import (
	"context"
	"testing"
	"time"
)

func TestSuperviseTimeout(t *testing.T) {
	ctx, stop := Supervise(context.Background(), 20*time.Millisecond, nil)
	defer stop()

	select {
	case <-ctx.Done():
		if ctx.Err() != context.DeadlineExceeded {
			t.Errorf("Err = %v, want DeadlineExceeded", ctx.Err())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout did not fire")
	}
}

func TestSuperviseDisconnect(t *testing.T) {
	disconnected := make(chan struct{})
	ctx, stop := Supervise(context.Background(), time.Minute, disconnected)
	defer stop()

	close(disconnected)

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect did not cancel the stream context")
	}
}

func TestSuperviseStopReleases(t *testing.T) {
	ctx, stop := Supervise(context.Background(), time.Minute, make(chan struct{}))
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not cancel the context")
	}
}

func TestSuperviseZeroTimeoutUsesDefault(t *testing.T) {
	ctx, stop := Supervise(context.Background(), 0, nil)
	defer stop()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if remaining := time.Until(deadline); remaining < DefaultStreamTimeout-time.Second || remaining > DefaultStreamTimeout {
		t.Errorf("deadline %v away, want about %v", remaining, DefaultStreamTimeout)
	}
}
