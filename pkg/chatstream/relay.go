package chatstream

import (
	"context"
	"errors"
	"strings"

	"ai-assistant-be/pkg/llm"
)

// Emitter receives classified segments in arrival order. The SSE writer is
// the production implementation; tests substitute a recorder.
type Emitter interface {
	// EmitVisible pushes one visible text chunk (the default event).
	EmitVisible(text string) error
	// EmitHidden pushes one hidden-reasoning chunk (the "think" event).
	EmitHidden(text string) error
}

// Result is what one relayed stream produced. Visible is the accumulated
// visible text (what becomes the assistant turn); Hidden is kept for the
// relay log. UpstreamErr is set only for provider failures, never for
// cancellation.
type Result struct {
	Visible     string
	Hidden      string
	Cancelled   bool
	UpstreamErr error
}

// Relay drives one stream session: it pulls deltas from the provider
// channels, demultiplexes them, and forwards segments to the emitter until
// the stream ends, the token fires, or the upstream fails. On every exit
// path the demuxer is flushed so trailing residual text (including a
// partial marker at end of stream) is classified and accumulated.
//
// Emitter write errors stop event emission but not accumulation: whatever
// text was classified is still returned for persistence.
func Relay(ctx context.Context, deltas <-chan string, upstreamErrs <-chan error, emitter Emitter) Result {
	demux := NewDemuxer()
	var visible, hidden strings.Builder
	emitBroken := false

	emit := func(segs []Segment) {
		for _, seg := range segs {
			if seg.Hidden {
				hidden.WriteString(seg.Text)
			} else {
				visible.WriteString(seg.Text)
			}
			if emitBroken {
				continue
			}
			var err error
			if seg.Hidden {
				err = emitter.EmitHidden(seg.Text)
			} else {
				err = emitter.EmitVisible(seg.Text)
			}
			if err != nil {
				emitBroken = true
			}
		}
	}

	result := Result{}

loop:
	for {
		select {
		case delta, ok := <-deltas:
			if !ok {
				break loop
			}
			emit(demux.Feed(delta))
		case <-ctx.Done():
			result.Cancelled = true
			break loop
		}
	}

	emit(demux.Flush())

	// Drain the error channel without blocking on a producer that is still
	// unwinding after cancellation.
	select {
	case err := <-upstreamErrs:
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			var upstream *llm.UpstreamError
			if errors.As(err, &upstream) {
				result.UpstreamErr = err
			}
		} else if err != nil {
			result.Cancelled = true
		}
	default:
	}

	result.Visible = visible.String()
	result.Hidden = hidden.String()
	return result
}
