package sse

import (
	"bufio"
	"bytes"
	"testing"
)

func newTestWriter() (*Writer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWriter(bufio.NewWriter(&buf)), &buf
}

func TestWriteData(t *testing.T) {
	w, buf := newTestWriter()
	if err := w.WriteData("hello"); err != nil {
		t.Fatal(err)
	}
	want := "data: hello\n\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteDataMultiline(t *testing.T) {
	w, buf := newTestWriter()
	if err := w.WriteData("line one\nline two"); err != nil {
		t.Fatal(err)
	}
	want := "data: line one\ndata: line two\n\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteDataEmptyPayload(t *testing.T) {
	// An empty chunk still frames as a complete event.
	w, buf := newTestWriter()
	if err := w.WriteData(""); err != nil {
		t.Fatal(err)
	}
	want := "data: \n\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteThink(t *testing.T) {
	w, buf := newTestWriter()
	if err := w.WriteThink("reasoning"); err != nil {
		t.Fatal(err)
	}
	want := "event: think\ndata: reasoning\n\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteError(t *testing.T) {
	w, buf := newTestWriter()
	if err := w.WriteError(); err != nil {
		t.Fatal(err)
	}
	want := "event: error\ndata: {\"message\":\"stream_failed\"}\n\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteDone(t *testing.T) {
	w, buf := newTestWriter()
	if err := w.WriteDone(); err != nil {
		t.Fatal(err)
	}
	want := "event: done\ndata: [DONE]\n\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestEventSequenceFraming(t *testing.T) {
	w, buf := newTestWriter()
	_ = w.WriteThink("t1")
	_ = w.WriteData("v1")
	_ = w.WriteData("v2")
	_ = w.WriteDone()

	want := "event: think\ndata: t1\n\n" +
		"data: v1\n\n" +
		"data: v2\n\n" +
		"event: done\ndata: [DONE]\n\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
