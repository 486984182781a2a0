package sse

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// noFlushWriter hides the recorder's Flush method
type noFlushWriter struct {
	http.ResponseWriter
}

func TestWriter(t *testing.T) {
	rec := httptest.NewRecorder()

	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if !rec.Flushed {
		t.Error("headers not flushed on open")
	}

	if err := w.WriteEvent("log", "7", map[string]string{"message": "hi"}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := w.WriteEvent("log", "", []int{1}); err != nil {
		t.Fatalf("WriteEvent without id: %v", err)
	}
	if err := w.WriteKeepAlive(); err != nil {
		t.Fatalf("WriteKeepAlive: %v", err)
	}

	want := "id: 7\nevent: log\ndata: {\"message\":\"hi\"}\n\n" +
		"event: log\ndata: [1]\n\n" +
		": keepalive\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("stream =\n%q\nwant\n%q", got, want)
	}
}

func TestWriterEncodeError(t *testing.T) {
	w, err := NewWriter(httptest.NewRecorder())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteEvent("log", "1", make(chan int)); err == nil {
		t.Error("WriteEvent accepted an unencodable payload")
	}
}

func TestNewWriterRequiresFlusher(t *testing.T) {
	if _, err := NewWriter(noFlushWriter{httptest.NewRecorder()}); err == nil {
		t.Error("NewWriter succeeded on a writer that cannot flush")
	}
}
