package sse

import (
	"bufio"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DoneSentinel is the payload of the terminal done event.
const DoneSentinel = "[DONE]"

// SetHeaders marks the response as an incremental text-event stream with
// caching disabled and the connection kept alive.
func SetHeaders(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderContentType, "text/event-stream; charset=utf-8")
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")
}

// Writer frames push events onto a buffered stream writer. Each event is
// flushed immediately so the client sees chunks as they are classified, not
// when the response buffer happens to fill.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w *bufio.Writer) *Writer {
	return &Writer{w: w}
}

// WriteData emits one default event carrying a visible text chunk.
func (s *Writer) WriteData(payload string) error {
	return s.writeEvent("", payload)
}

// WriteThink emits one "think" event carrying a hidden-reasoning chunk.
func (s *Writer) WriteThink(payload string) error {
	return s.writeEvent("think", payload)
}

// WriteError emits the single in-band failure event. The stream still
// concludes with a done event afterwards.
func (s *Writer) WriteError() error {
	body, _ := json.Marshal(fiber.Map{"message": "stream_failed"})
	return s.writeEvent("error", string(body))
}

// WriteDone emits the terminal event. It must be the last thing written on
// every exit path; the client closes its reader on it.
func (s *Writer) WriteDone() error {
	return s.writeEvent("done", DoneSentinel)
}

// writeEvent frames a payload per the SSE wire format. Embedded newlines
// are continued as additional data: lines so the blank-line event delimiter
// stays unambiguous.
func (s *Writer) writeEvent(event, payload string) error {
	if event != "" {
		if _, err := s.w.WriteString("event: " + event + "\n"); err != nil {
			return err
		}
	}
	for _, line := range strings.Split(payload, "\n") {
		if _, err := s.w.WriteString("data: " + line + "\n"); err != nil {
			return err
		}
	}
	if _, err := s.w.WriteString("\n"); err != nil {
		return err
	}
	return s.w.Flush()
}
