package chatstream

import (
	"context"
	"time"
)

// DefaultStreamTimeout is the wall-clock limit for one relay stream.
const DefaultStreamTimeout = 90 * time.Second

// Supervise derives the stream's cancellation token from the request
// context: it fires when the timeout elapses or when the transport reports
// a client disconnect, whichever comes first. The disconnect channel is
// observed once by a dedicated goroutine, not polled.
//
// The returned stop function releases the timer and the watcher goroutine;
// callers must invoke it on every exit path so a completed stream does not
// leave a dangling timer.
func Supervise(parent context.Context, timeout time.Duration, disconnected <-chan struct{}) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultStreamTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)

	if disconnected != nil {
		go func() {
			select {
			case <-disconnected:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return ctx, cancel
}
