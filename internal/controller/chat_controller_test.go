package controller

import (
	"bufio"
	"context"
	"errors"
	"testing"
	"time"

	"ai-assistant-be/pkg/chatstream"
	"ai-assistant-be/pkg/sse"
)

// brokenWriter fails every write, like a TCP connection the peer closed.
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestEmitterSignalsDisconnectOnWriteFailure(t *testing.T) {
	emitter := newSSEEmitter(sse.NewWriter(bufio.NewWriter(brokenWriter{})))
	streamCtx, stop := chatstream.Supervise(context.Background(), time.Minute, emitter.Disconnected())
	defer stop()

	if err := emitter.EmitVisible("hello"); err == nil {
		t.Fatal("expected a write error from the closed connection")
	}

	select {
	case <-streamCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("stream context did not cancel after the failed write")
	}
	if !errors.Is(streamCtx.Err(), context.Canceled) {
		t.Errorf("stream context error = %v, want context.Canceled", streamCtx.Err())
	}
}

func TestEmitterSurvivesRepeatedWriteFailures(t *testing.T) {
	emitter := newSSEEmitter(sse.NewWriter(bufio.NewWriter(brokenWriter{})))

	if err := emitter.EmitVisible("a"); err == nil {
		t.Fatal("expected a write error")
	}
	// The disconnect signal is one-shot; later failures must not panic on
	// a second channel close.
	if err := emitter.EmitHidden("b"); err == nil {
		t.Fatal("expected a write error")
	}
	select {
	case <-emitter.Disconnected():
	default:
		t.Fatal("disconnected channel not closed")
	}
}

func TestEmitterStaysOpenWhileWritesSucceed(t *testing.T) {
	var sink discardWriter
	emitter := newSSEEmitter(sse.NewWriter(bufio.NewWriter(&sink)))

	if err := emitter.EmitVisible("hello"); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	select {
	case <-emitter.Disconnected():
		t.Fatal("disconnected fired on a healthy connection")
	default:
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
