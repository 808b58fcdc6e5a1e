package chatstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-assistant-be/pkg/llm"
)

// recordingEmitter captures emitted chunks and can be told to start failing.
type recordingEmitter struct {
	visible []string
	hidden  []string
	fail    bool
}

func (e *recordingEmitter) EmitVisible(text string) error {
	if e.fail {
		return errors.New("write failed")
	}
	e.visible = append(e.visible, text)
	return nil
}

func (e *recordingEmitter) EmitHidden(text string) error {
	if e.fail {
		return errors.New("write failed")
	}
	e.hidden = append(e.hidden, text)
	return nil
}

func streamOf(deltas ...string) (<-chan string, chan error) {
	deltaChan := make(chan string, len(deltas))
	errChan := make(chan error, 1)
	for _, d := range deltas {
		deltaChan <- d
	}
	close(deltaChan)
	return deltaChan, errChan
}

func joined(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p
	}
	return out
}

func TestRelayHappyPath(t *testing.T) {
	deltas, errs := streamOf("<think>plan", "ning</think>he", "llo")
	close(errs)

	emitter := &recordingEmitter{}
	result := Relay(context.Background(), deltas, errs, emitter)

	if result.Visible != "hello" {
		t.Errorf("Visible = %q, want %q", result.Visible, "hello")
	}
	if result.Hidden != "planning" {
		t.Errorf("Hidden = %q, want %q", result.Hidden, "planning")
	}
	if result.Cancelled || result.UpstreamErr != nil {
		t.Errorf("unexpected Cancelled=%v UpstreamErr=%v", result.Cancelled, result.UpstreamErr)
	}
	if joined(emitter.visible) != "hello" {
		t.Errorf("emitted visible = %q, want %q", joined(emitter.visible), "hello")
	}
	if joined(emitter.hidden) != "planning" {
		t.Errorf("emitted hidden = %q, want %q", joined(emitter.hidden), "planning")
	}
}

func TestRelayUpstreamFailure(t *testing.T) {
	deltaChan := make(chan string, 2)
	errChan := make(chan error, 1)
	deltaChan <- "partial "
	deltaChan <- "answer"
	errChan <- &llm.UpstreamError{Provider: "together", Err: errors.New("status 500")}
	close(deltaChan)
	close(errChan)

	emitter := &recordingEmitter{}
	result := Relay(context.Background(), deltaChan, errChan, emitter)

	if result.UpstreamErr == nil {
		t.Fatal("expected UpstreamErr")
	}
	var upstream *llm.UpstreamError
	if !errors.As(result.UpstreamErr, &upstream) {
		t.Errorf("UpstreamErr = %v, want *llm.UpstreamError", result.UpstreamErr)
	}
	// Text that arrived before the failure is kept for persistence.
	if result.Visible != "partial answer" {
		t.Errorf("Visible = %q, want %q", result.Visible, "partial answer")
	}
	if result.Cancelled {
		t.Error("upstream failure must not count as cancellation")
	}
}

func TestRelayCancellation(t *testing.T) {
	deltaChan := make(chan string)
	errChan := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())

	emitter := &recordingEmitter{}
	done := make(chan Result, 1)
	go func() {
		done <- Relay(ctx, deltaChan, errChan, emitter)
	}()

	deltaChan <- "some text "
	cancel()

	select {
	case result := <-done:
		if !result.Cancelled {
			t.Error("expected Cancelled")
		}
		if result.UpstreamErr != nil {
			t.Errorf("cancellation must not surface as upstream error, got %v", result.UpstreamErr)
		}
		if result.Visible != "some text " {
			t.Errorf("Visible = %q, want %q", result.Visible, "some text ")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not return after cancellation")
	}
}

func TestRelayProviderContextErrorCountsAsCancellation(t *testing.T) {
	deltaChan := make(chan string)
	errChan := make(chan error, 1)
	errChan <- context.Canceled
	close(deltaChan)
	close(errChan)

	result := Relay(context.Background(), deltaChan, errChan, &recordingEmitter{})
	if !result.Cancelled {
		t.Error("provider context error should count as cancellation")
	}
	if result.UpstreamErr != nil {
		t.Errorf("UpstreamErr = %v, want nil", result.UpstreamErr)
	}
}

func TestRelayFlushesPartialMarkerAtEOF(t *testing.T) {
	deltas, errs := streamOf("answer<thi")
	close(errs)

	result := Relay(context.Background(), deltas, errs, &recordingEmitter{})
	if result.Visible != "answer<thi" {
		t.Errorf("Visible = %q, want %q", result.Visible, "answer<thi")
	}
}

func TestRelayEmitterFailureKeepsAccumulating(t *testing.T) {
	deltas, errs := streamOf("first ", "second")
	close(errs)

	emitter := &recordingEmitter{fail: true}
	result := Relay(context.Background(), deltas, errs, emitter)

	if result.Visible != "first second" {
		t.Errorf("Visible = %q, want %q", result.Visible, "first second")
	}
	if len(emitter.visible) != 0 {
		t.Errorf("broken emitter recorded %v, want nothing", emitter.visible)
	}
}

func TestRelayHiddenOnlyStream(t *testing.T) {
	deltas, errs := streamOf("<think>only reasoning</think>")
	close(errs)

	result := Relay(context.Background(), deltas, errs, &recordingEmitter{})
	if result.Visible != "" {
		t.Errorf("Visible = %q, want empty", result.Visible)
	}
	if result.Hidden != "only reasoning" {
		t.Errorf("Hidden = %q, want %q", result.Hidden, "only reasoning")
	}
}
